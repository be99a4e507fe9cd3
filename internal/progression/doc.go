// Package progression derives a student's course progress from raw submission
// records: per-item classification, per-week aggregation, and sequential week
// locking across the whole curriculum. Everything here is pure and total over
// its inputs; I/O lives in the repository and service packages.
package progression
