package model

// Provenance identifies which upstream source produced a resolved series.
type Provenance string

const (
	ProvenancePrimaryAPI     Provenance = "primary-api"
	ProvenanceFreeAPI        Provenance = "free-api"
	ProvenancePersistedStore Provenance = "persisted-store"
)

// ResolvedSeries is a normalized series tagged with its origin.
type ResolvedSeries struct {
	Symbol     string     `json:"symbol"`
	Bars       []PriceBar `json:"bars"`
	Provenance Provenance `json:"provenance"`
}
