// Package query maps a dashboard selection (site, payload range) onto the two
// result tables the charts are drawn from.
//
//   - SummarizeBySite         success totals per site, lexicographic by site
//   - SummarizeSiteOutcomes   Success/Failure counts for one site
//   - FilterForCorrelation    records inside the payload range (and site)
//
// Summarize and Correlate wrap these with the chart titles the dashboard
// shows; Options returns the dropdown and range slider settings.
//
// Every function is pure: it reads the Dataset it is given and never changes
// it, so calls may run concurrently against one shared Dataset.
package query
