// Package minio provides a blobstore.Store for MinIO and other S3-compatible
// services (Ceph, SeaweedFS, Garage) using the MinIO client.
//
//	store, err := minio.Dial("localhost:9000", "minioadmin", "minioadmin", false, "datasets", "runs/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	blob, err := store.Open(ctx, "points.csv")
package minio
