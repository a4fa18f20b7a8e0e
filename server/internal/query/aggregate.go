package query

import (
	"github.com/obsidianstack/launchdash/server/internal/dataset"
)

// LabelCount is one slice of the aggregate view.
type LabelCount struct {
	Label string
	Value int
}

// Mode says which aggregation produced a Summary.
type Mode string

const (
	// ModeBySite holds one slice per site with its success total.
	ModeBySite Mode = "by_site"
	// ModeSiteOutcomes holds Success/Failure counts for a single site.
	ModeSiteOutcomes Mode = "site_outcomes"
)

// Summary is the aggregate view for a site selection.
type Summary struct {
	Site   string
	Mode   Mode
	Title  string
	Slices []LabelCount
}

// outcomeOrder fixes the order labels are emitted in.
var outcomeOrder = [...]dataset.Outcome{dataset.Success, dataset.Failure}

// SummarizeBySite returns the number of successful launches per site, one
// entry for every site in ds (zero included), in lexicographic site order.
func SummarizeBySite(ds *dataset.Dataset) []LabelCount {
	successes := make(map[string]int)
	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		if r.Outcome == dataset.Success {
			successes[r.Site]++
		}
	}

	sites := ds.Sites()
	out := make([]LabelCount, 0, len(sites))
	for _, s := range sites {
		out = append(out, LabelCount{Label: s, Value: successes[s]})
	}
	return out
}

// SummarizeSiteOutcomes counts the launches from site per outcome label.
// Labels with no launches are omitted, so callers treat a missing label as
// zero. A site not present in ds yields an empty result.
func SummarizeSiteOutcomes(ds *dataset.Dataset, site string) []LabelCount {
	var counts [len(outcomeOrder)]int
	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		if r.Site == site && int(r.Outcome) < len(counts) {
			counts[r.Outcome]++
		}
	}

	out := make([]LabelCount, 0, len(outcomeOrder))
	for _, o := range outcomeOrder {
		if n := counts[o]; n > 0 {
			out = append(out, LabelCount{Label: o.String(), Value: n})
		}
	}
	return out
}

// Summarize picks the aggregation for site: success totals by site for
// AllSites, the outcome breakdown otherwise.
func Summarize(ds *dataset.Dataset, site string) Summary {
	site = NormalizeSite(site)
	if site == AllSites {
		return Summary{
			Site:   AllSites,
			Mode:   ModeBySite,
			Title:  "Total Success Launches By Site",
			Slices: SummarizeBySite(ds),
		}
	}
	return Summary{
		Site:   site,
		Mode:   ModeSiteOutcomes,
		Title:  "Total Success Launches for site " + site,
		Slices: SummarizeSiteOutcomes(ds, site),
	}
}
