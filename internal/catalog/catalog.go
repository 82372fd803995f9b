// Package catalog is the read-only reference data store: destinations,
// accommodations, craft and extras, loaded once at startup.
package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sync"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

//go:embed data/*.json
var embedded embed.FS

// DefaultFS returns the reference data shipped with the binary.
func DefaultFS() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

type Catalog struct {
	Destinations   []domain.Destination   `json:"destinations"`
	Accommodations []domain.Accommodation `json:"accommodations"`
	Craft          []domain.Craft         `json:"spacecraft"`
	Extras         []domain.Extra         `json:"extras"`
}

type Cache interface {
	GetCatalog(ctx context.Context) (*Catalog, error)
	SetCatalog(ctx context.Context, c *Catalog) error
}

type Store struct {
	fsys   fs.FS
	cache  Cache
	logger logrus.FieldLogger

	mu    sync.RWMutex
	data  Catalog
	ready chan struct{}
	once  sync.Once
	err   error
}

func NewStore(fsys fs.FS, cache Cache, logger logrus.FieldLogger) *Store {
	return &Store{
		fsys:   fsys,
		cache:  cache,
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// Load reads every catalog concurrently. On failure the catalogs stay empty and
// the error is returned; callers treat that as "nothing selectable".
func (s *Store) Load(ctx context.Context) error {
	err := s.load(ctx)
	s.once.Do(func() {
		s.err = err
		close(s.ready)
	})
	return err
}

// Wait blocks until the first Load finished or ctx expires.
func (s *Store) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return s.err
	case <-ctx.Done():
		return fmt.Errorf("waiting for reference data: %w", ctx.Err())
	}
}

func (s *Store) load(ctx context.Context) error {
	if s.cache != nil {
		if cached, err := s.cache.GetCatalog(ctx); err == nil && cached != nil {
			s.set(*cached)
			s.logger.Debug("reference data served from cache")
			return nil
		}
	}

	var (
		destinations struct {
			Items []domain.Destination `json:"destinations"`
		}
		accommodations struct {
			Items []domain.Accommodation `json:"accommodations"`
		}
		craft struct {
			Items []domain.Craft `json:"spacecraft"`
		}
		extras struct {
			Items []domain.Extra `json:"extras"`
		}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readJSON(gctx, "destinations.json", &destinations) })
	g.Go(func() error { return s.readJSON(gctx, "accommodations.json", &accommodations) })
	g.Go(func() error { return s.readJSON(gctx, "spacecraft.json", &craft) })
	g.Go(func() error { return s.readJSON(gctx, "extras.json", &extras) })
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Error("failed to load reference data")
		return err
	}

	c := Catalog{
		Destinations:   destinations.Items,
		Accommodations: accommodations.Items,
		Craft:          craft.Items,
		Extras:         extras.Items,
	}
	s.set(c)
	s.logger.WithFields(logrus.Fields{
		"destinations":   len(c.Destinations),
		"accommodations": len(c.Accommodations),
		"craft":          len(c.Craft),
		"extras":         len(c.Extras),
	}).Info("reference data loaded")

	if s.cache != nil {
		if err := s.cache.SetCatalog(ctx, &c); err != nil {
			s.logger.WithError(err).Warn("failed to cache reference data")
		}
	}
	return nil
}

func (s *Store) readJSON(ctx context.Context, name string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) set(c Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = c
}

// Snapshot returns a copy of every catalog.
func (s *Store) Snapshot() Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Catalog{
		Destinations:   append([]domain.Destination(nil), s.data.Destinations...),
		Accommodations: append([]domain.Accommodation(nil), s.data.Accommodations...),
		Craft:          append([]domain.Craft(nil), s.data.Craft...),
		Extras:         append([]domain.Extra(nil), s.data.Extras...),
	}
}

func (s *Store) Destination(id string) (*domain.Destination, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.data.Destinations {
		if d.ID == id {
			return &d, true
		}
	}
	return nil, false
}

func (s *Store) Accommodation(id string) (*domain.Accommodation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.data.Accommodations {
		if a.ID == id {
			return &a, true
		}
	}
	return nil, false
}

func (s *Store) Extra(id domain.ExtraID) (domain.Extra, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.data.Extras {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Extra{}, false
}

// PriceExtras resolves extra ids to their catalog prices. Unknown ids are reported.
func (s *Store) PriceExtras(ids []domain.ExtraID) ([]domain.SelectedExtra, []domain.ExtraID) {
	var (
		priced  []domain.SelectedExtra
		unknown []domain.ExtraID
	)
	for _, id := range ids {
		e, ok := s.Extra(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		priced = append(priced, domain.SelectedExtra{ID: e.ID, Price: e.Price})
	}
	return priced, unknown
}
