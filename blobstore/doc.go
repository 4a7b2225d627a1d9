// Package blobstore abstracts where datasets and clustering results live.
//
// A Store reads and writes named blobs (CSV files, optionally compressed).
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, inputs are memory-mapped
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// Blobs are random-access; NewReader turns one into a sequential stream:
//
//	blob, err := store.Open(ctx, "points.csv.zst")
//	if err != nil { ... }
//	defer blob.Close()
//	ds, err := dataset.ReadCSV(blobstore.NewReader(blob))
package blobstore
