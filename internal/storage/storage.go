// Package storage uploads event material to an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"

	"github.com/iliyamo/spark-meetup/internal/config"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("storage: document storage is not configured")

// Document is the result of a successful upload.
type Document struct {
	Key       string
	PublicURL string
}

type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes documents under <root>/<folderKey>/<displayName>.
type S3Store struct {
	client     putter
	bucket     string
	region     string
	rootPrefix string
	publicBase string
}

// NewS3Store builds a store from cfg. Static credentials are used when
// present; otherwise the SDK's anonymous credentials apply, which suits local
// S3 emulators.
func NewS3Store(cfg config.StorageConfig) (*S3Store, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, "")
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return newS3Store(s3.New(opts), cfg), nil
}

func newS3Store(client putter, cfg config.StorageConfig) *S3Store {
	return &S3Store{
		client:     client,
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		rootPrefix: strings.Trim(cfg.RootPrefix, "/"),
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

// StoreDocument uploads the file at localPath and returns its public URL.
func (s *S3Store) StoreDocument(ctx context.Context, localPath, displayName, folderKey string) (Document, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return Document{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	name := path.Base(strings.ReplaceAll(strings.TrimSpace(displayName), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = filepath.Base(localPath)
	}
	key := s.objectKey(folderKey, name)

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return Document{}, fmt.Errorf("put object %s: %w", key, err)
	}
	return Document{Key: key, PublicURL: s.publicURL(key)}, nil
}

func (s *S3Store) objectKey(folderKey, name string) string {
	parts := make([]string, 0, 3)
	if s.rootPrefix != "" {
		parts = append(parts, s.rootPrefix)
	}
	if fk := strings.Trim(folderKey, "/"); fk != "" {
		parts = append(parts, fk)
	}
	parts = append(parts, name)
	return strings.Join(parts, "/")
}

func (s *S3Store) publicURL(key string) string {
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	escaped := strings.Join(segs, "/")
	if s.publicBase != "" {
		return s.publicBase + "/" + escaped
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
}

// FolderKey names the folder that holds an event's material:
// date_title_instructor, each part slugged, empty parts skipped.
func FolderKey(date, title, instructor string) string {
	var parts []string
	for _, p := range []string{date, title, instructor} {
		if s := slug.Make(p); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "untitled"
	}
	return strings.Join(parts, "_")
}
