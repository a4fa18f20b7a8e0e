package query

import (
	"github.com/obsidianstack/launchdash/server/internal/dataset"
)

// Range slider settings. The slider is fixed at 0–10000 kg regardless of the
// dataset; only its initial value comes from the data.
const (
	SliderMin  = 0
	SliderMax  = 10000
	SliderStep = 1000
)

var sliderMarks = []float64{0, 2500, 5000, 7500, 10000}

// SiteOption is one entry of the site dropdown.
type SiteOption struct {
	Label string
	Value string
}

// Slider describes the payload range slider.
type Slider struct {
	Min   float64
	Max   float64
	Step  float64
	Marks []float64
	Value [2]float64
}

// Options is everything the dashboard needs to build its inputs.
type Options struct {
	Sites       []SiteOption
	DefaultSite string
	Slider      Slider
}

// BuildOptions derives the dropdown and slider settings from ds. "All Sites"
// comes first, followed by each site in lexicographic order.
func BuildOptions(ds *dataset.Dataset) Options {
	sites := ds.Sites()
	opts := make([]SiteOption, 0, len(sites)+1)
	opts = append(opts, SiteOption{Label: "All Sites", Value: AllSites})
	for _, s := range sites {
		opts = append(opts, SiteOption{Label: s, Value: s})
	}

	marks := make([]float64, len(sliderMarks))
	copy(marks, sliderMarks)

	return Options{
		Sites:       opts,
		DefaultSite: AllSites,
		Slider: Slider{
			Min:   SliderMin,
			Max:   SliderMax,
			Step:  SliderStep,
			Marks: marks,
			Value: [2]float64{ds.MinPayload(), ds.MaxPayload()},
		},
	}
}
