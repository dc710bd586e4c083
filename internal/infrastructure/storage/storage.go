// Package storage provides recipe image storage on the local filesystem or
// an S3 compatible object store
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zerowastechef/server/internal/infrastructure/config"
	"github.com/zerowastechef/server/internal/ports/outbound"
)

// New builds the image store selected by cfg.Provider
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (outbound.ImageStore, error) {
	var (
		store outbound.ImageStore
		err   error
	)

	switch cfg.Provider {
	case "", "local":
		store, err = NewLocalStore(cfg.LocalPath, cfg.URLPrefix)
	case "s3":
		store, err = NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Image storage ready", zap.String("provider", cfg.Provider))
	return Restrict(store, cfg.AllowedTypes), nil
}

// Restrict wraps store so that Save rejects content types not in allowed
func Restrict(store outbound.ImageStore, allowed []string) outbound.ImageStore {
	set := make(map[string]struct{}, len(allowed))
	for _, t := range allowed {
		set[strings.ToLower(t)] = struct{}{}
	}
	return &restrictedStore{ImageStore: store, allowed: set}
}

type restrictedStore struct {
	outbound.ImageStore
	allowed map[string]struct{}
}

func (s *restrictedStore) Save(ctx context.Context, filename, contentType string, content io.Reader) (string, error) {
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	if _, ok := s.allowed[strings.TrimSpace(mediaType)]; !ok {
		return "", outbound.ErrUnsupportedImageType
	}
	return s.ImageStore.Save(ctx, filename, contentType, content)
}

// objectName generates a unique name keeping the upload's extension
func objectName(filename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}
