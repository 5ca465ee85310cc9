// Package scheduler turns a list of titles into finished icons: it asks the
// provider chain for artwork, runs the compositing pipeline, writes the
// output tree, and records every outcome.
//
// Two modes exist. Parallel mode fans tasks out over a worker pool and is
// meant for unattended runs. Sequential mode processes one title at a time,
// routing each candidate set through the selection bridge so a human can
// pick, while the next title's artwork is prefetched in the background.
//
// A single task failure never aborts the run; failures produce review
// sidecars and the run finishes with a partial-completion summary.
package scheduler
