package intake

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/landing-intake/pkg/logging"
)

var tracer = otel.Tracer("landing.internal.intake")

const (
	keyPrefix          = "uploads/"
	defaultContentType = "application/octet-stream"
	tokenLength        = 13
)

// S3API is the subset of the S3 client used by Uploader.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// File is one uploaded payload.
type File struct {
	Name        string
	Data        []byte
	ContentType string
}

// Locator identifies a stored file. ID is the storage key.
type Locator struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Uploader writes uploaded files to an S3-compatible bucket.
type Uploader struct {
	client     S3API
	bucket     string
	publicBase string
	timeout    time.Duration
	now        func() time.Time
	token      func() string
	logger     *logging.Logger
}

// Option customizes an Uploader.
type Option func(*Uploader)

// WithClock overrides the timestamp source used in keys.
func WithClock(now func() time.Time) Option {
	return func(s *Uploader) { s.now = now }
}

// WithTokenSource overrides the random token used in keys.
func WithTokenSource(token func() string) Option {
	return func(s *Uploader) { s.token = token }
}

// WithTimeout bounds each PutObject call.
func WithTimeout(d time.Duration) Option {
	return func(s *Uploader) { s.timeout = d }
}

// NewUploader creates an Uploader. publicBase may be empty, in which case locator URLs
// are the bare keys.
func NewUploader(client S3API, bucket, publicBase string, logger *logging.Logger, opts ...Option) *Uploader {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Uploader{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		now:        time.Now,
		token:      randomToken,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store writes files in order and returns one locator per file. It stops at the
// first failure and returns a *StorageError.
func (s *Uploader) Store(ctx context.Context, files []File) ([]Locator, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if s.client == nil {
		return nil, &StorageError{Key: keyPrefix, Err: fmt.Errorf("storage client not configured")}
	}

	locators := make([]Locator, 0, len(files))
	for _, f := range files {
		key := s.objectKey(f.Name)
		if err := s.put(ctx, key, f); err != nil {
			s.logger.Error("file store failed", "error", err, "key", key, "stored", len(locators))
			return nil, &StorageError{Key: key, Err: err}
		}
		locators = append(locators, Locator{ID: key, URL: s.publicURL(key)})
		s.logger.Info("file stored", "key", key, "bytes", len(f.Data), "content_type", f.ContentType)
	}
	return locators, nil
}

func (s *Uploader) put(ctx context.Context, key string, f File) error {
	ctx, span := tracer.Start(ctx, "storage.put_object")
	defer span.End()
	span.SetAttributes(
		attribute.String("storage.key", key),
		attribute.Int("storage.bytes", len(f.Data)),
	)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	contentType := strings.TrimSpace(f.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(f.Data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(f.Data))),
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// objectKey is uploads/<unix-millis>-<token>-<sanitized name>.
func (s *Uploader) objectKey(name string) string {
	return fmt.Sprintf("%s%d-%s-%s", keyPrefix, s.now().UnixMilli(), s.token(), SanitizeFilename(name))
}

func (s *Uploader) publicURL(key string) string {
	if s.publicBase == "" {
		return key
	}
	return s.publicBase + "/" + key
}

// SanitizeFilename keeps [A-Za-z0-9.-] and replaces everything else with '-'.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" || strings.Trim(out, ".") == "" {
		return "file"
	}
	return out
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:tokenLength]
}
