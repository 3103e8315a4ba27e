// Package export copies the exported items of a finished tournament to a
// destination.
//
// Each exported file is named after its percentile and original base name
// ("085.0_beach.jpg"), so a plain directory listing sorts best first.
// Destinations are Sinks: a local directory or an S3 bucket. Copies run in
// parallel with a bounded number of workers; the first failure cancels the
// rest.
package export
