// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", "datasets/")
//	if err != nil { ... }
//
//	blob, err := store.Open(ctx, "points.csv.zst")
//
// Reads are ranged GETs, so a dataset can be streamed without downloading it
// first. Writes go through the multipart upload manager.
package s3
