// Package dataset holds the immutable in-memory table of launch records the
// dashboard is built over.
//
// Loader.Load(ctx, source) reads a CSV table from a local path or an
// http(s) URL exactly once. The required columns are:
//
//	Launch Site | Payload Mass (kg) | class | Booster Version Category
//
// Any other column is ignored. A source that cannot be read, is not CSV,
// lacks a required column or carries a malformed payload/class cell fails
// with *LoadError and no Dataset is produced.
//
// A Dataset is never modified after New returns, so one handle can be shared
// by any number of goroutines without locking.
package dataset
