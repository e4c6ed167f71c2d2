package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/maeumssi/maeumssi/internal/modules/filestorage/domain"
)

// Config selects the bucket. Endpoint and PublicEndpoint are only set for
// MinIO, where the server reaches the store on a different host than
// browsers do.
type Config struct {
	Bucket         string
	Region         string
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
}

// Store keeps objects in an S3 compatible bucket.
type Store struct {
	api     *s3.Client
	presign *s3.PresignClient
	bucket  string

	// bases are the URL prefixes objects are addressed by. New uploads use
	// the first one.
	bases []*url.URL
}

var _ domain.Store = (*Store)(nil)

func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, pathStyle(cfg.Endpoint, cfg.UseSSL))
	signer := api
	if cfg.Endpoint != "" && cfg.PublicEndpoint != "" {
		signer = s3.NewFromConfig(awsCfg, pathStyle(cfg.PublicEndpoint, cfg.UseSSL))
	}

	bases, err := objectBases(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{
		api:     api,
		presign: s3.NewPresignClient(signer),
		bucket:  cfg.Bucket,
		bases:   bases,
	}, nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	key, err := domain.CleanKey(key)
	if err != nil {
		return "", err
	}
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}

	u := *s.bases[0]
	u.Path += key
	return u.String(), nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	key, err := domain.CleanKey(key)
	if err != nil {
		return err
	}
	_, err = s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return s.sign(ctx, key, "", ttl)
}

func (s *Store) DownloadURL(ctx context.Context, key, filename string, ttl time.Duration) (string, error) {
	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": domain.DownloadName(filename),
	})
	return s.sign(ctx, key, disposition, ttl)
}

func (s *Store) sign(ctx context.Context, key, disposition string, ttl time.Duration) (string, error) {
	key, err := domain.CleanKey(key)
	if err != nil {
		return "", err
	}
	in := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if disposition != "" {
		in.ResponseContentDisposition = aws.String(disposition)
	}

	req, err := s.presign.PresignGetObject(ctx, in, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s: %w", key, err)
	}
	return req.URL, nil
}

// KeyFromURL accepts URLs on any of the store's hosts regardless of scheme.
func (s *Store) KeyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrURLMismatch, rawURL)
	}
	for _, base := range s.bases {
		if !strings.EqualFold(u.Host, base.Host) {
			continue
		}
		if key, ok := strings.CutPrefix(u.Path, base.Path); ok {
			return domain.CleanKey(key)
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrURLMismatch, rawURL)
}

// pathStyle points the client at a MinIO endpoint. AWS proper keeps the
// SDK's virtual host addressing.
func pathStyle(endpoint string, useSSL bool) func(*s3.Options) {
	return func(o *s3.Options) {
		if endpoint == "" {
			return
		}
		o.BaseEndpoint = aws.String(withScheme(endpoint, useSSL))
		o.UsePathStyle = true
	}
}

func objectBases(cfg Config) ([]*url.URL, error) {
	var raw []string
	for _, endpoint := range []string{cfg.PublicEndpoint, cfg.Endpoint} {
		if endpoint != "" {
			raw = append(raw, strings.TrimRight(withScheme(endpoint, cfg.UseSSL), "/")+"/"+cfg.Bucket+"/")
		}
	}
	if len(raw) == 0 {
		raw = append(raw, fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", cfg.Bucket, cfg.Region))
	}

	bases := make([]*url.URL, 0, len(raw))
	for _, r := range raw {
		u, err := url.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("s3: endpoint %q: %w", r, err)
		}
		bases = append(bases, u)
	}
	return bases, nil
}

func withScheme(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}
