// Package bench measures the evaluation tiers against each other.
//
// A benchmark replays an accel.Corpus through every engine for a number of
// rounds and records per-operation latencies in HDR histograms, so the
// accelerated tier's gain over the reference tier can be read per operation.
package bench
