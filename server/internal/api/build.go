package api

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/obsidianstack/launchdash/server/internal/dataset"
	"github.com/obsidianstack/launchdash/server/internal/query"
)

// BuildHealth summarises the loaded dataset.
func BuildHealth(ds *dataset.Dataset) HealthResponse {
	return HealthResponse{
		State:      "ok",
		Records:    ds.Len(),
		Sites:      len(ds.Sites()),
		MinPayload: ds.MinPayload(),
		MaxPayload: ds.MaxPayload(),
	}
}

// BuildOptions returns the dropdown and slider settings for ds.
func BuildOptions(ds *dataset.Dataset) OptionsResponse {
	o := query.BuildOptions(ds)
	sites := make([]SiteOption, 0, len(o.Sites))
	for _, s := range o.Sites {
		sites = append(sites, SiteOption{Label: s.Label, Value: s.Value})
	}
	return OptionsResponse{
		Sites:       sites,
		DefaultSite: o.DefaultSite,
		Slider: SliderResponse{
			Min:   o.Slider.Min,
			Max:   o.Slider.Max,
			Step:  o.Slider.Step,
			Marks: o.Slider.Marks,
			Value: o.Slider.Value,
		},
	}
}

// BuildSummary returns the aggregate view for site.
func BuildSummary(ds *dataset.Dataset, site string) SummaryResponse {
	s := query.Summarize(ds, site)
	slices := make([]Slice, 0, len(s.Slices))
	for _, lc := range s.Slices {
		slices = append(slices, Slice{Label: lc.Label, Value: lc.Value})
	}
	return SummaryResponse{
		Site:   s.Site,
		Mode:   string(s.Mode),
		Title:  s.Title,
		Slices: slices,
	}
}

// BuildCorrelation returns the payload/outcome view for q.
func BuildCorrelation(ds *dataset.Dataset, q query.Query) CorrelationResponse {
	c := query.Correlate(ds, q)
	points := make([]Point, 0, len(c.Rows))
	for _, r := range c.Rows {
		points = append(points, Point{
			PayloadMassKg:          r.PayloadMassKg,
			Outcome:                r.Outcome.Int(),
			OutcomeLabel:           r.Outcome.String(),
			BoosterVersionCategory: r.BoosterVersionCategory,
			Site:                   r.Site,
		})
	}
	return CorrelationResponse{
		Site:        c.Query.Site,
		PayloadLow:  c.Query.PayloadLow,
		PayloadHigh: c.Query.PayloadHigh,
		Title:       c.Title,
		Count:       len(points),
		Points:      points,
	}
}

// BuildUpdate returns both views for q, as one dashboard interaction does.
func BuildUpdate(ds *dataset.Dataset, q query.Query) UpdateResponse {
	q = q.Normalize()
	return UpdateResponse{
		Summary:     BuildSummary(ds, q.Site),
		Correlation: BuildCorrelation(ds, q),
	}
}

// ParseQuery builds a query from string parameters as they arrive in a URL.
// Empty bounds default to the dataset's payload range; anything that is not
// a finite number is rejected with query.ErrInvalidQuery.
func ParseQuery(ds *dataset.Dataset, site, low, high string) (query.Query, error) {
	q := query.DefaultQuery(ds)
	if s := strings.TrimSpace(site); s != "" {
		q.Site = s
	}

	var err error
	if q.PayloadLow, err = parseBound("low", low, q.PayloadLow); err != nil {
		return query.Query{}, err
	}
	if q.PayloadHigh, err = parseBound("high", high, q.PayloadHigh); err != nil {
		return query.Query{}, err
	}
	return q.Normalize(), nil
}

// Query resolves r against ds, filling missing bounds from the dataset.
func (r QueryRequest) Query(ds *dataset.Dataset) (query.Query, error) {
	q := query.DefaultQuery(ds)
	if s := strings.TrimSpace(r.Site); s != "" {
		q.Site = s
	}
	if r.PayloadLow != nil {
		q.PayloadLow = *r.PayloadLow
	}
	if r.PayloadHigh != nil {
		q.PayloadHigh = *r.PayloadHigh
	}
	if !finite(q.PayloadLow) || !finite(q.PayloadHigh) {
		return query.Query{}, fmt.Errorf("%w: payload bounds must be finite", query.ErrInvalidQuery)
	}
	return q.Normalize(), nil
}

func parseBound(name, raw string, def float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !finite(v) {
		return 0, fmt.Errorf("%w: %s %q is not a number", query.ErrInvalidQuery, name, raw)
	}
	return v, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
