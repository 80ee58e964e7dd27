// Package reference holds the static table of tracked companies.
package reference

import (
	"strings"

	"findata/internal/model"
)

// Company is one row of the reference table. BasePrice seeds generated
// demo series.
type Company struct {
	Symbol    string
	Name      string
	Sector    string
	Industry  string
	BasePrice float64
}

// companies is ordered; listing fallbacks take a prefix of it.
var companies = []Company{
	{"RELIANCE", "Reliance Industries Ltd.", "Energy", "Oil & Gas Refining", 2850},
	{"TCS", "Tata Consultancy Services Ltd.", "Technology", "IT Services", 3600},
	{"HDFCBANK", "HDFC Bank Ltd.", "Financial Services", "Private Banks", 1650},
	{"INFY", "Infosys Ltd.", "Technology", "IT Services", 1450},
	{"HINDUNILVR", "Hindustan Unilever Ltd.", "Consumer Goods", "Personal Products", 2380},
	{"ICICIBANK", "ICICI Bank Ltd.", "Financial Services", "Private Banks", 1050},
	{"BHARTIARTL", "Bharti Airtel Ltd.", "Telecommunication", "Telecom Services", 1580},
	{"ITC", "ITC Ltd.", "Consumer Goods", "Tobacco & FMCG", 450},
	{"SBIN", "State Bank of India", "Financial Services", "Public Banks", 780},
	{"LT", "Larsen & Toubro Ltd.", "Industrials", "Construction & Engineering", 3500},
	{"KOTAKBANK", "Kotak Mahindra Bank Ltd.", "Financial Services", "Private Banks", 1780},
	{"WIPRO", "Wipro Ltd.", "Technology", "IT Services", 580},
	{"AXISBANK", "Axis Bank Ltd.", "Financial Services", "Private Banks", 1150},
	{"ASIANPAINT", "Asian Paints Ltd.", "Consumer Goods", "Paints", 2900},
	{"MARUTI", "Maruti Suzuki India Ltd.", "Automobile", "Passenger Vehicles", 12500},
	{"AAPL", "Apple Inc.", "Technology", "Consumer Electronics", 190},
	{"MSFT", "Microsoft Corporation", "Technology", "Software", 410},
	{"GOOGL", "Alphabet Inc.", "Communication Services", "Internet Content", 150},
	{"AMZN", "Amazon.com Inc.", "Consumer Cyclical", "Internet Retail", 180},
	{"TSLA", "Tesla Inc.", "Consumer Cyclical", "Auto Manufacturers", 200},
	{"META", "Meta Platforms Inc.", "Communication Services", "Internet Content", 480},
	{"NVDA", "NVIDIA Corporation", "Technology", "Semiconductors", 880},
	{"JPM", "JPMorgan Chase & Co.", "Financial Services", "Banks", 195},
	{"V", "Visa Inc.", "Financial Services", "Credit Services", 275},
	{"WMT", "Walmart Inc.", "Consumer Defensive", "Discount Stores", 60},
}

var bySymbol = func() map[string]Company {
	m := make(map[string]Company, len(companies))
	for _, c := range companies {
		m[c.Symbol] = c
	}
	return m
}()

// All returns a copy of the table in its canonical order.
func All() []Company {
	return append([]Company(nil), companies...)
}

// Lookup finds a company by symbol. Exchange suffixes such as ".NS" or
// ".BSE" are ignored.
func Lookup(symbol string) (Company, bool) {
	c, ok := bySymbol[Clean(symbol)]
	return c, ok
}

// Clean strips an exchange suffix and upper-cases the symbol.
func Clean(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.IndexByte(symbol, '.'); i > 0 {
		return symbol[:i]
	}
	return symbol
}

// Profile returns the profile for symbol. Unknown symbols get the symbol
// as name and an unknown sector.
func Profile(symbol string) model.CompanyProfile {
	if c, ok := Lookup(symbol); ok {
		return c.Profile()
	}
	return model.CompanyProfile{
		Symbol:   symbol,
		Name:     symbol,
		Sector:   model.UnknownSector,
		Industry: model.UnknownSector,
	}
}

// Profile converts the row to the served shape. Market cap is not tracked.
func (c Company) Profile() model.CompanyProfile {
	return model.CompanyProfile{
		Symbol:   c.Symbol,
		Name:     c.Name,
		Sector:   c.Sector,
		Industry: c.Industry,
	}
}

// Profiles returns the first n profiles in table order, filtered by sector
// when sector is not empty. n <= 0 means no limit.
func Profiles(sector string, n int) []model.CompanyProfile {
	var out []model.CompanyProfile
	for _, c := range companies {
		if sector != "" && !strings.EqualFold(c.Sector, sector) {
			continue
		}
		out = append(out, c.Profile())
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}
