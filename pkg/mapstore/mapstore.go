// Package mapstore archives encoded maps in S3. Maps are stored in
// their database encoding, one object per map name, so anything that
// can fetch an object can feed a map straight back into a room.
package mapstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/bonkgo-dev/bonkgo/pkg/bonkmap"
)

// ErrNotFound is returned when no map is stored under a name.
var ErrNotFound = errors.New("mapstore: map not found")

const (
	contentType = "text/plain; charset=utf-8"
	keySuffix   = ".bonkmap"
)

// Client is the slice of the S3 API the store uses. *s3.Client
// satisfies it.
type Client interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Entry describes one stored map.
type Entry struct {
	Name     string
	Size     int64
	Modified time.Time
}

// Store is an S3-backed map archive.
type Store struct {
	client Client
	bucket string
	prefix string
	log    *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix scopes all keys under an object key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		s.prefix = prefix
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New builds a store over an S3 bucket.
func New(client Client, bucket string, opts ...Option) *Store {
	s := &Store{
		client: client,
		bucket: bucket,
		prefix: "maps/",
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(name string) string {
	return s.prefix + name + keySuffix
}

// Put encodes and stores a map under the given name, overwriting any
// previous version.
func (s *Store) Put(ctx context.Context, name string, m *bonkmap.Map) error {
	encoded, err := m.EncodeDatabase()
	if err != nil {
		return fmt.Errorf("mapstore: encode %q: %w", name, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        strings.NewReader(encoded),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"map-name":   m.Metadata.Name,
			"map-author": m.Metadata.Author,
			"stored-at":  s.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("mapstore: put %q: %w", name, err)
	}
	s.log.Debug("map stored", "name", name, "bucket", s.bucket)
	return nil
}

// Get fetches and decodes a stored map.
func (s *Store) Get(ctx context.Context, name string) (*bonkmap.Map, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("mapstore: get %q: %w", name, err)
	}
	defer out.Body.Close()
	encoded, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("mapstore: get %q: %w", name, err)
	}
	m, err := bonkmap.DecodeDatabase(string(encoded))
	if err != nil {
		return nil, fmt.Errorf("mapstore: decode %q: %w", name, err)
	}
	return m, nil
}

// Delete removes a stored map. Deleting an absent name is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("mapstore: delete %q: %w", name, err)
	}
	return nil
}

// List enumerates the stored maps in key order.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("mapstore: list: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			name := strings.TrimSuffix(path.Base(key), keySuffix)
			e := Entry{Name: name, Size: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				e.Modified = *obj.LastModified
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}
