package model

// UnknownSector is used when no sector or industry is known.
const UnknownSector = "Unknown"

// CompanyProfile is read-mostly reference data keyed by symbol.
type CompanyProfile struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Sector    string  `json:"sector"`
	Industry  string  `json:"industry"`
	MarketCap float64 `json:"market_cap"`
}

// Comparison is the pairwise performance result.
type Comparison struct {
	Symbol1           string  `json:"symbol1"`
	Symbol2           string  `json:"symbol2"`
	Correlation       float64 `json:"correlation"`
	Symbol1Return     float64 `json:"symbol1_return"`
	Symbol2Return     float64 `json:"symbol2_return"`
	Symbol1Volatility float64 `json:"symbol1_volatility"`
	Symbol2Volatility float64 `json:"symbol2_volatility"`
	BetterPerformer   string  `json:"better_performer"`
}

// Mover is one entry in the gainers or losers list.
type Mover struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	CurrentPrice  float64 `json:"current_price"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
}

// TopMovers holds the ranked gainers and losers.
type TopMovers struct {
	Gainers []Mover `json:"gainers"`
	Losers  []Mover `json:"losers"`
}
