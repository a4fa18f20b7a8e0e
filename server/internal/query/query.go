package query

import (
	"errors"
	"strings"

	"github.com/obsidianstack/launchdash/server/internal/dataset"
)

// AllSites is the site filter value that selects every launch site.
const AllSites = "ALL"

// ErrInvalidQuery is returned by transports for query parameters that cannot
// be interpreted at all (non-numeric bounds, malformed messages). Reversed
// bounds are not an error; see Query.Normalize.
var ErrInvalidQuery = errors.New("invalid query")

// Query is one dashboard selection.
type Query struct {
	Site        string
	PayloadLow  float64
	PayloadHigh float64
}

// DefaultQuery selects every site over the full payload range of ds, which
// is the dashboard's initial state.
func DefaultQuery(ds *dataset.Dataset) Query {
	return Query{
		Site:        AllSites,
		PayloadLow:  ds.MinPayload(),
		PayloadHigh: ds.MaxPayload(),
	}
}

// Normalize returns q with an empty site treated as AllSites and the payload
// bounds swapped if they arrive reversed.
func (q Query) Normalize() Query {
	q.Site = NormalizeSite(q.Site)
	if q.PayloadLow > q.PayloadHigh {
		q.PayloadLow, q.PayloadHigh = q.PayloadHigh, q.PayloadLow
	}
	return q
}

// NormalizeSite maps an empty or blank site filter to AllSites.
func NormalizeSite(site string) string {
	if strings.TrimSpace(site) == "" {
		return AllSites
	}
	return site
}

// IsAllSites reports whether q spans every launch site.
func (q Query) IsAllSites() bool { return q.Site == AllSites }
