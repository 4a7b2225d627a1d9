// Package dataset reads and writes clustering inputs and outputs as CSV.
//
// Every input line holds the coordinates of one point, e.g. "1.5, 2.0".
// Outputs prefix each point with its center index:
//
//	0,1.5,2.0
//	1,8.0,9.5
//
// Streams may be zstd or lz4 compressed; CompressionFromName picks the codec
// from a file extension (".zst", ".zstd", ".lz4").
package dataset
