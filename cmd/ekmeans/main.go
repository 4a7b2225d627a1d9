// Command ekmeans clusters CSV points into balanced k-means clusters.
//
//	ekmeans generate --output points.csv --n 1000 --blobs 4
//	ekmeans run --input points.csv --output clusters.csv --k 4 --equal
//
// Inputs and outputs are local paths, s3://bucket/key or
// minio://endpoint/bucket/key locations. A .zst or .lz4 suffix selects
// compression.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
