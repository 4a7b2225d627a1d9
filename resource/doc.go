// Package resource limits what clustering runs may consume: memory for
// distance matrices, concurrent object store transfers and IO throughput.
//
// A single Controller is typically shared by every Clusterer and transfer of
// a process.
package resource
