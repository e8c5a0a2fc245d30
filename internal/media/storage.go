// AngelaMos | 2026
// storage.go

package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/carterperez-dev/asmr-backend/internal/config"
	"github.com/carterperez-dev/asmr-backend/internal/core"
)

// URLSigner issues time-limited GET URLs for stored objects.
type URLSigner interface {
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// R2Signer presigns against a Cloudflare R2 (S3-compatible) bucket. The
// client is built on first use and shared for the life of the process.
type R2Signer struct {
	cfg config.StorageConfig

	once    sync.Once
	client  *minio.Client
	initErr error
}

func NewR2Signer(cfg config.StorageConfig) *R2Signer {
	return &R2Signer{cfg: cfg}
}

func (s *R2Signer) Configured() bool {
	return s.cfg.IsConfigured()
}

func (s *R2Signer) getClient() (*minio.Client, error) {
	s.once.Do(func() {
		if !s.cfg.IsConfigured() {
			s.initErr = core.ErrStorageUnavailable
			return
		}

		host, secure, err := splitEndpoint(s.cfg.Endpoint)
		if err != nil {
			s.initErr = err
			return
		}

		region := s.cfg.Region
		if region == "" {
			region = "auto"
		}

		s.client, s.initErr = minio.New(host, &minio.Options{
			Creds:  credentials.NewStaticV4(s.cfg.AccessKeyID, s.cfg.SecretAccessKey, ""),
			Secure: secure,
			Region: region,
		})
	})

	return s.client, s.initErr
}

func (s *R2Signer) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	client, err := s.getClient()
	if err != nil {
		return "", fmt.Errorf("storage client: %w", err)
	}

	u, err := client.PresignedGetObject(ctx, s.cfg.ResolvedAudioBucket(), key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}

	return u.String(), nil
}

// Ping reports whether the audio bucket is reachable.
func (s *R2Signer) Ping(ctx context.Context) error {
	client, err := s.getClient()
	if err != nil {
		return err
	}

	exists, err := client.BucketExists(ctx, s.cfg.ResolvedAudioBucket())
	if err != nil {
		return fmt.Errorf("bucket exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %q missing: %w", s.cfg.ResolvedAudioBucket(), core.ErrStorageUnavailable)
	}

	return nil
}

// splitEndpoint accepts either a bare host or a URL and returns the host
// plus whether TLS should be used.
func splitEndpoint(endpoint string) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), true, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parse storage endpoint: %w", err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("storage endpoint %q has no host", endpoint)
	}

	return u.Host, u.Scheme != "http", nil
}
