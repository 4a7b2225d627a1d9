package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/ekmeans/blobstore"
	"github.com/hupe1980/ekmeans/blobstore/minio"
	"github.com/hupe1980/ekmeans/blobstore/s3"
	"github.com/hupe1980/ekmeans/dataset"
	"github.com/hupe1980/ekmeans/resource"
	"go.uber.org/multierr"
)

// MinIO credentials are taken from the environment.
const (
	envMinioAccessKey = "MINIO_ACCESS_KEY"
	envMinioSecretKey = "MINIO_SECRET_KEY"
	envMinioSecure    = "MINIO_SECURE"
)

// resolveLocation splits a location into the store holding it and the blob
// name inside that store.
func resolveLocation(ctx context.Context, location string) (blobstore.Store, string, error) {
	if !strings.Contains(location, "://") {
		return blobstore.NewLocalStore(filepath.Dir(location)), filepath.Base(location), nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, "", fmt.Errorf("invalid location %q: %w", location, err)
	}
	key := strings.TrimPrefix(u.Path, "/")

	switch u.Scheme {
	case "s3":
		if u.Host == "" || key == "" {
			return nil, "", fmt.Errorf("invalid location %q: want s3://bucket/key", location)
		}
		store, err := s3.New(ctx, u.Host, "")
		if err != nil {
			return nil, "", err
		}
		return store, key, nil
	case "minio":
		bucket, name, ok := strings.Cut(key, "/")
		if u.Host == "" || !ok || bucket == "" || name == "" {
			return nil, "", fmt.Errorf("invalid location %q: want minio://endpoint/bucket/key", location)
		}
		store, err := minio.Dial(u.Host,
			os.Getenv(envMinioAccessKey),
			os.Getenv(envMinioSecretKey),
			os.Getenv(envMinioSecure) == "true",
			bucket, "")
		if err != nil {
			return nil, "", err
		}
		return store, name, nil
	default:
		return nil, "", fmt.Errorf("invalid location %q: unsupported scheme %q", location, u.Scheme)
	}
}

// readDataset parses the CSV dataset at location.
func readDataset(ctx context.Context, rc *resource.Controller, location string, optFns ...func(o *dataset.ReadOptions)) (*dataset.Dataset, error) {
	store, name, err := resolveLocation(ctx, location)
	if err != nil {
		return nil, err
	}

	if err := rc.AcquireTransfer(ctx); err != nil {
		return nil, err
	}
	defer rc.ReleaseTransfer()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", location, err)
	}
	defer blob.Close()

	r, err := dataset.NewReader(resource.NewRateLimitedReader(ctx, blobstore.NewReader(blob), rc), dataset.CompressionFromName(name))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	ds, err := dataset.ReadCSV(r, optFns...)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return ds, nil
}

// writeLocation streams the output of write to location. Nothing becomes
// visible unless write succeeds.
func writeLocation(ctx context.Context, rc *resource.Controller, location string, write func(w io.Writer) error) error {
	store, name, err := resolveLocation(ctx, location)
	if err != nil {
		return err
	}

	if err := rc.AcquireTransfer(ctx); err != nil {
		return err
	}
	defer rc.ReleaseTransfer()

	blob, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("create %s: %w", location, err)
	}

	w, err := dataset.NewWriter(resource.NewRateLimitedWriter(ctx, blob, rc), dataset.CompressionFromName(name))
	if err != nil {
		return multierr.Append(err, blob.Abort())
	}
	if err := write(w); err != nil {
		return multierr.Combine(fmt.Errorf("write %s: %w", location, err), w.Close(), blob.Abort())
	}
	if err := w.Close(); err != nil {
		return multierr.Append(fmt.Errorf("write %s: %w", location, err), blob.Abort())
	}
	if err := blob.Close(); err != nil {
		return fmt.Errorf("write %s: %w", location, err)
	}
	return nil
}
