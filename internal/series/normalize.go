// Package series converts source-specific bar sequences into the canonical
// ordered shape consumed by the calculator.
package series

import (
	"sort"
	"time"

	"findata/internal/model"
)

// Normalize fills gaps, drops incomplete bars, removes duplicate dates
// (the last arrival wins) and sorts ascending by date.
// The input slice is never modified. The result is never nil.
func Normalize(raw []model.RawBar) []model.PriceBar {
	if len(raw) == 0 {
		return []model.PriceBar{}
	}

	filled := make([]model.RawBar, len(raw))
	for i, r := range raw {
		if !r.Date.IsZero() {
			r.Date = model.Date(r.Date)
		}
		filled[i] = r
	}
	forwardFill(filled)
	backFill(filled)

	// Dedup keeping the last occurrence of each date.
	lastIdx := make(map[int64]int, len(filled))
	for i, r := range filled {
		if !r.Complete() {
			continue
		}
		lastIdx[r.Date.Unix()] = i
	}

	bars := make([]model.PriceBar, 0, len(lastIdx))
	for i, r := range filled {
		if !r.Complete() || lastIdx[r.Date.Unix()] != i {
			continue
		}
		bars = append(bars, r.Bar())
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars
}

// FromBars normalizes already-complete bars, e.g. rows read from storage.
func FromBars(bars []model.PriceBar) []model.PriceBar {
	raw := make([]model.RawBar, len(bars))
	for i, b := range bars {
		raw[i] = model.RawFromBar(b)
	}
	return Normalize(raw)
}

func forwardFill(bars []model.RawBar) {
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1]
		cur := &bars[i]
		if !cur.Open.Valid {
			cur.Open = prev.Open
		}
		if !cur.High.Valid {
			cur.High = prev.High
		}
		if !cur.Low.Valid {
			cur.Low = prev.Low
		}
		if !cur.Close.Valid {
			cur.Close = prev.Close
		}
		if !cur.Volume.Valid {
			cur.Volume = prev.Volume
		}
	}
}

func backFill(bars []model.RawBar) {
	for i := len(bars) - 2; i >= 0; i-- {
		next := bars[i+1]
		cur := &bars[i]
		if !cur.Open.Valid {
			cur.Open = next.Open
		}
		if !cur.High.Valid {
			cur.High = next.High
		}
		if !cur.Low.Valid {
			cur.Low = next.Low
		}
		if !cur.Close.Valid {
			cur.Close = next.Close
		}
		if !cur.Volume.Valid {
			cur.Volume = next.Volume
		}
	}
}

// Since returns the suffix of an ordered series dated on or after cutoff.
func Since(bars []model.PriceBar, cutoff time.Time) []model.PriceBar {
	cutoff = model.Date(cutoff)
	i := sort.Search(len(bars), func(i int) bool { return !bars[i].Date.Before(cutoff) })
	return bars[i:]
}
