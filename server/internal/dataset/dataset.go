package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Outcome is the binary launch result carried by the `class` column.
type Outcome uint8

const (
	Failure Outcome = 0
	Success Outcome = 1
)

// outcomeLabels is the fixed display table for Outcome values.
var outcomeLabels = [...]string{
	Failure: "Failure",
	Success: "Success",
}

// String returns "Success" or "Failure".
func (o Outcome) String() string {
	if int(o) < len(outcomeLabels) {
		return outcomeLabels[o]
	}
	return "Outcome(" + strconv.Itoa(int(o)) + ")"
}

// Int returns the 0/1 value used on the wire and as the scatter y-axis.
func (o Outcome) Int() int { return int(o) }

// ParseOutcome parses a `class` cell. "1" and "0" are accepted, as are the
// float spellings ("1.0") some exports produce.
func ParseOutcome(s string) (Outcome, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "1":
		return Success, nil
	case "0":
		return Failure, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("class %q: not a number", s)
	}
	switch f {
	case 1:
		return Success, nil
	case 0:
		return Failure, nil
	}
	return 0, fmt.Errorf("class %q: want 0 or 1", s)
}

// Record is one launch row.
type Record struct {
	Site                   string
	PayloadMassKg          float64
	Outcome                Outcome
	BoosterVersionCategory string
}

// Dataset is an ordered, read-only collection of launch records. Record order
// is source order.
type Dataset struct {
	records    []Record
	sites      []string
	minPayload float64
	maxPayload float64
}

// New builds a Dataset from records. The slice is copied, so later changes by
// the caller are not observed.
func New(records []Record) *Dataset {
	d := &Dataset{records: make([]Record, len(records))}
	copy(d.records, records)

	seen := make(map[string]struct{})
	for i, r := range d.records {
		if i == 0 || r.PayloadMassKg < d.minPayload {
			d.minPayload = r.PayloadMassKg
		}
		if i == 0 || r.PayloadMassKg > d.maxPayload {
			d.maxPayload = r.PayloadMassKg
		}
		if _, ok := seen[r.Site]; !ok {
			seen[r.Site] = struct{}{}
			d.sites = append(d.sites, r.Site)
		}
	}
	sort.Strings(d.sites)
	return d
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// At returns the i-th record in source order.
func (d *Dataset) At(i int) Record { return d.records[i] }

// Records returns a copy of all records in source order.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Sites returns the distinct launch sites in lexicographic order.
func (d *Dataset) Sites() []string {
	out := make([]string, len(d.sites))
	copy(out, d.sites)
	return out
}

// HasSite reports whether any record was launched from site.
func (d *Dataset) HasSite(site string) bool {
	i := sort.SearchStrings(d.sites, site)
	return i < len(d.sites) && d.sites[i] == site
}

// MinPayload is the smallest payload mass in the table, computed at load.
func (d *Dataset) MinPayload() float64 { return d.minPayload }

// MaxPayload is the largest payload mass in the table, computed at load.
func (d *Dataset) MaxPayload() float64 { return d.maxPayload }
