package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/ekmeans/blobstore"
)

// Options configures a Store.
type Options struct {
	// PartSize is the part size of multipart uploads. Default: 8MB.
	PartSize int64
	// Concurrency is the number of concurrent part uploads. Default: 5.
	Concurrency int
	// LeavePartsOnError keeps the parts of a failed multipart upload.
	LeavePartsOnError bool
}

// Store implements blobstore.Store for S3.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	uploader *manager.Uploader
}

// New creates a Store using the default AWS configuration chain.
// rootPrefix is prepended to all keys (e.g. "datasets/").
func New(ctx context.Context, bucket, rootPrefix string, optFns ...func(*config.LoadOptions) error) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}
	return NewStore(s3.NewFromConfig(cfg), bucket, rootPrefix), nil
}

// NewStore creates a new S3 blob store.
// rootPrefix is prepended to all keys (e.g. "datasets/").
func NewStore(client Client, bucket, rootPrefix string, optFns ...func(o *Options)) *Store {
	opts := Options{
		PartSize:    8 * 1024 * 1024,
		Concurrency: 5,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = opts.PartSize
			u.Concurrency = opts.Concurrency
			u.LeavePartsOnError = opts.LeavePartsOnError
		}),
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open opens a blob for reading. ctx also bounds the blob's range reads.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", blobstore.ErrNotFound, s.bucket, key)
		}
		return nil, err
	}

	return &blob{
		ctx:    ctx,
		client: s.client,
		bucket: s.bucket,
		key:    key,
		size:   aws.ToInt64(head.ContentLength),
	}, nil
}

// Create starts a streaming upload; the object appears when the blob is closed.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return newWritableBlob(ctx, s.uploader, s.bucket, s.key(name)), nil
}

// Put writes a blob with a single request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(s.bucket),
		Key:               aws.String(s.key(name)),
		Body:              bytes.NewReader(data),
		ContentLength:     aws.Int64(int64(len(data))),
		ChecksumAlgorithm: types.ChecksumAlgorithmCrc32c,
	})
	return err
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// List returns the names of all blobs below the root prefix that start with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix)),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			name = strings.TrimPrefix(name, "/")
			if name != "" && strings.HasPrefix(name, prefix) {
				keys = append(keys, name)
			}
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}

// blob implements blobstore.Blob with ranged GETs.
type blob struct {
	ctx    context.Context
	client Client
	bucket string
	key    string
	size   int64
}

func (b *blob) Close() error {
	return nil
}

func (b *blob) Size() int64 {
	return b.size
}

func (b *blob) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off >= b.size {
		return 0, io.EOF
	}
	if err := b.ctx.Err(); err != nil {
		return 0, err
	}

	end := min(off+int64(len(p)), b.size) - 1

	resp, err := b.client.GetObject(b.ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, end)),
	})
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	want := int(end - off + 1)
	n, err := io.ReadFull(resp.Body, p[:want])
	if err != nil {
		return n, err
	}
	if want < len(p) {
		return n, io.EOF
	}
	return n, nil
}
