package analytics

import (
	"sort"

	"findata/internal/calculator"
	"findata/internal/model"
)

// Candidate is a company considered for the movers ranking with its most
// recent bars, ascending by date.
type Candidate struct {
	Symbol string
	Name   string
	Bars   []model.PriceBar
}

// TopMovers ranks candidates by the percent change of close between their
// two most recent bars. Candidates with fewer than two bars are skipped.
// Losers are the bottom limit entries, most negative first.
func TopMovers(candidates []Candidate, limit int) model.TopMovers {
	movers := make([]model.Mover, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Bars) < 2 {
			continue
		}
		latest := c.Bars[len(c.Bars)-1]
		previous := c.Bars[len(c.Bars)-2]
		movers = append(movers, model.Mover{
			Symbol:        c.Symbol,
			Name:          c.Name,
			CurrentPrice:  latest.Close,
			ChangePercent: calculator.Round2((latest.Close - previous.Close) / previous.Close * 100),
			Volume:        latest.Volume,
		})
	}

	sort.SliceStable(movers, func(i, j int) bool {
		return movers[i].ChangePercent > movers[j].ChangePercent
	})

	if limit < 0 {
		limit = 0
	}
	n := min(limit, len(movers))
	gainers := append([]model.Mover{}, movers[:n]...)
	losers := make([]model.Mover, 0, n)
	for i := len(movers) - 1; i >= len(movers)-n; i-- {
		losers = append(losers, movers[i])
	}
	return model.TopMovers{Gainers: gainers, Losers: losers}
}
