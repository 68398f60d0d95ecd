// Package dashboard implements the dashboard operations: every backend call is
// wrapped in a pending, fulfilled or rejected store action.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/starford/ncdash/internal/apperr"
	"github.com/starford/ncdash/internal/backend"
	"github.com/starford/ncdash/internal/blobs"
	"github.com/starford/ncdash/internal/catalog"
	"github.com/starford/ncdash/internal/models"
	"github.com/starford/ncdash/internal/store"
)

// Backend is the subset of the backend client the dashboard uses.
type Backend interface {
	ListDatasets(ctx context.Context) ([]models.Dataset, error)
	DatasetInfo(ctx context.Context, datasetID string) (*models.RawDatasetInfo, error)
	LatLon(ctx context.Context, datasetID string) (*models.LatLon, error)
	GenerateImage4D(ctx context.Context, r backend.Image4DRequest) ([]byte, error)
	GenerateImage3D(ctx context.Context, r backend.Image3DRequest) ([]byte, error)
	GenerateImage1D(ctx context.Context, r backend.Image1DRequest) ([]byte, error)
	GenerateTransect(ctx context.Context, r backend.TransectRequest) ([]byte, error)
	ListSessions(ctx context.Context) ([]models.Session, error)
	CreateSession(ctx context.Context, datasetID, parentID string) (*models.Session, error)
}

var _ Backend = (*backend.Client)(nil)

// Service runs dashboard operations against the backend and the store.
type Service struct {
	api     Backend
	store   *store.Store
	blobs   blobs.Provider
	catalog catalog.ImageCatalog
	logger  *slog.Logger

	urlPrefix     string
	toastDuration time.Duration
	cache         *imageCache

	flights singleflight.Group
	infoSeq atomic.Uint64

	toastGen   atomic.Uint64
	toastMu    sync.Mutex
	toastTimer *time.Timer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithURLPrefix sets the prefix of image references.
func WithURLPrefix(prefix string) Option {
	return func(s *Service) { s.urlPrefix = prefix }
}

// WithMaxImages bounds the number of cached image references. Zero keeps
// every reference.
func WithMaxImages(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cache = newImageCache(n)
		} else {
			s.cache = nil
		}
	}
}

// WithToastDuration sets the default toast duration.
func WithToastDuration(d time.Duration) Option {
	return func(s *Service) { s.toastDuration = d }
}

// NewService creates a dashboard service. cat may be nil, in which case
// generated images are not catalogued.
func NewService(api Backend, st *store.Store, blobStore blobs.Provider, cat catalog.ImageCatalog, opts ...Option) *Service {
	s := &Service{
		api:           api,
		store:         st,
		blobs:         blobStore,
		catalog:       cat,
		logger:        slog.Default(),
		urlPrefix:     "/blobs/",
		toastDuration: 3 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Store returns the state store the service writes to.
func (s *Service) Store() *store.Store {
	return s.store
}

// Blobs returns the blob store holding generated images.
func (s *Service) Blobs() blobs.Provider {
	return s.blobs
}

// Close stops the pending toast timer.
func (s *Service) Close() {
	s.toastMu.Lock()
	defer s.toastMu.Unlock()
	if s.toastTimer != nil {
		s.toastTimer.Stop()
	}
}

// dispatch applies an action whose rejection would be a programming error.
func (s *Service) dispatch(a store.Action) {
	if err := s.store.Dispatch(a); err != nil {
		s.logger.Error("dashboard: dispatch failed", slog.String("action", a.Name()), slog.String("error", err.Error()))
	}
}

// logFailure records a rejected operation with the backend detail.
func (s *Service) logFailure(op string, err error) {
	attrs := []any{slog.String("op", op), slog.String("error", err.Error())}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		attrs = append(attrs, slog.Int("status", ae.Status), slog.String("code", string(ae.Code)))
	}
	s.logger.Warn("dashboard: operation failed", attrs...)
}
