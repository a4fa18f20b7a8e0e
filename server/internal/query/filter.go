package query

import (
	"math"

	"github.com/obsidianstack/launchdash/server/internal/dataset"
)

// CorrelationRow is one point of the payload/outcome view.
type CorrelationRow struct {
	Site                   string
	PayloadMassKg          float64
	Outcome                dataset.Outcome
	BoosterVersionCategory string
}

// Correlation is the payload/outcome view for a query.
type Correlation struct {
	Query Query
	Title string
	Rows  []CorrelationRow
}

// FilterForCorrelation returns the records with low <= payload <= high and,
// unless site is AllSites (or empty), launched from site. Rows keep dataset
// order. An empty result is valid; a NaN or infinite bound selects nothing.
func FilterForCorrelation(ds *dataset.Dataset, site string, low, high float64) []CorrelationRow {
	out := make([]CorrelationRow, 0)
	if !finite(low) || !finite(high) {
		return out
	}
	site = NormalizeSite(site)
	all := site == AllSites
	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		if r.PayloadMassKg < low || r.PayloadMassKg > high {
			continue
		}
		if !all && r.Site != site {
			continue
		}
		out = append(out, CorrelationRow{
			Site:                   r.Site,
			PayloadMassKg:          r.PayloadMassKg,
			Outcome:                r.Outcome,
			BoosterVersionCategory: r.BoosterVersionCategory,
		})
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Correlate normalizes q and returns its correlation view.
func Correlate(ds *dataset.Dataset, q Query) Correlation {
	q = q.Normalize()

	title := "Correlation between Payload and Success for all Sites"
	if !q.IsAllSites() {
		title = "Correlation between Payload and Success for site " + q.Site
	}
	return Correlation{
		Query: q,
		Title: title,
		Rows:  FilterForCorrelation(ds, q.Site, q.PayloadLow, q.PayloadHigh),
	}
}
