package s3

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var errAborted = errors.New("s3: upload aborted")

// writableBlob pipes writes into a background multipart upload.
type writableBlob struct {
	pw   *io.PipeWriter
	done chan error

	mu       sync.Mutex
	finished bool
	closeErr error
}

func newWritableBlob(ctx context.Context, uploader *manager.Uploader, bucket, key string) *writableBlob {
	pr, pw := io.Pipe()
	b := &writableBlob{
		pw:   pw,
		done: make(chan error, 1),
	}

	go func() {
		_, err := uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:            aws.String(bucket),
			Key:               aws.String(key),
			Body:              pr,
			ChecksumAlgorithm: types.ChecksumAlgorithmCrc32c,
		})
		// Unblocks a writer still waiting on the pipe.
		_ = pr.CloseWithError(err)
		b.done <- err
	}()

	return b
}

func (b *writableBlob) Write(p []byte) (int, error) {
	return b.pw.Write(p)
}

// Close finishes the upload and waits for it.
func (b *writableBlob) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return b.closeErr
	}
	b.finished = true

	if err := b.pw.Close(); err != nil {
		b.closeErr = err
		return err
	}
	b.closeErr = <-b.done
	return b.closeErr
}

// Abort fails the upload; the upload manager aborts any multipart upload it
// started.
func (b *writableBlob) Abort() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return nil
	}
	b.finished = true

	_ = b.pw.CloseWithError(errAborted)
	if err := <-b.done; err != nil && !errors.Is(err, errAborted) {
		return err
	}
	return nil
}
