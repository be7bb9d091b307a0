// Package listing drives playlist enumeration and reconciles the results
// against the catalogue.
//
// A request is classified as a playlist or a single item from its first page,
// the first page is answered synchronously, and a background loop keeps
// paginating until the collection is exhausted or the short-circuit rule
// fires: a page whose rows are all already catalogued and indexed means the
// tail was reached on a prior run, so re-listing stops without rewriting
// anything.
package listing
