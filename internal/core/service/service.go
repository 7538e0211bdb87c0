package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/niksmo/pc-catalog/internal/core/catalog"
	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/niksmo/pc-catalog/internal/core/imagery"
	"github.com/niksmo/pc-catalog/internal/core/port"
)

var _ port.CatalogQuerier = (*Service)(nil)
var _ port.StatusReporter = (*Service)(nil)
var _ port.CatalogRefresher = (*Service)(nil)
var _ port.ProductsSender = (*Service)(nil)
var _ port.ProductsSaver = (*Service)(nil)

var (
	ErrNoSource        = errors.New("catalog source is not configured")
	ErrIngestDisabled  = errors.New("listings ingestion is not configured")
	ErrNothingToUpdate = errors.New("no products")
)

type snapshot struct {
	catalog  domain.Catalog
	loadedAt time.Time
}

// Service serves queries from the current catalog snapshot.
//
// Writers replace the snapshot as a whole, readers never block.
type Service struct {
	current *atomic.Pointer[snapshot]
	writeMu *sync.Mutex

	source   port.CatalogSource
	storage  port.ProductsStorage
	producer port.ProductsProducer
	images   imagery.Resolver
}

// New creates a service. storage and producer may be nil,
// in which case persistence or publishing is skipped.
func New(
	source port.CatalogSource,
	storage port.ProductsStorage,
	producer port.ProductsProducer,
	images imagery.Resolver,
) Service {
	s := Service{
		current:  new(atomic.Pointer[snapshot]),
		writeMu:  new(sync.Mutex),
		source:   source,
		storage:  storage,
		producer: producer,
		images:   images,
	}
	s.current.Store(&snapshot{})
	return s
}

func (s Service) products() []domain.Product {
	return s.current.Load().catalog.Products
}

func (s Service) replace(c domain.Catalog) {
	s.current.Store(&snapshot{catalog: c, loadedAt: time.Now()})
}

func (s Service) Query(
	ctx context.Context, intent domain.QueryIntent, visible int,
) (domain.Page, error) {
	const op = "Service.Query"

	if err := ctx.Err(); err != nil {
		return domain.Page{}, fmt.Errorf("%s: %w", op, err)
	}

	ordered := catalog.Query(s.products(), intent)
	return catalog.Paginate(ordered, visible), nil
}

// Product returns the product with id from the current snapshot,
// falling back to storage for products not loaded yet.
func (s Service) Product(ctx context.Context, id string) (domain.Product, error) {
	const op = "Service.Product"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	for _, p := range s.products() {
		if p.ID == id {
			return p, nil
		}
	}

	if s.storage == nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, domain.ErrProductNotFound)
	}

	p, err := s.storage.ReadProduct(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s Service) RetailerFacets(
	ctx context.Context, intent domain.QueryIntent,
) ([]domain.RetailerFacet, error) {
	const op = "Service.RetailerFacets"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return catalog.RetailerFacets(s.products(), intent), nil
}

func (s Service) CategoryCounts(ctx context.Context) (map[string]int, error) {
	const op = "Service.CategoryCounts"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return catalog.CategoryCounts(s.products()), nil
}

func (s Service) Favorites(
	ctx context.Context, ids map[string]struct{},
) ([]domain.Product, error) {
	const op = "Service.Favorites"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return catalog.Favorites(s.products(), ids), nil
}

func (s Service) ResolveImage(p domain.Product) domain.ImageResult {
	return s.images.Resolve(p)
}

func (s Service) Status(ctx context.Context) (domain.Status, error) {
	const op = "Service.Status"

	if err := ctx.Err(); err != nil {
		return domain.Status{}, fmt.Errorf("%s: %w", op, err)
	}

	snap := s.current.Load()
	return domain.Status{
		LastUpdated:   snap.catalog.LastUpdated,
		LoadedAt:      snap.loadedAt,
		TotalProducts: len(snap.catalog.Products),
		Sites:         snap.catalog.Sites,
	}, nil
}

// Refresh reloads the catalog from its source. Sites that come back
// empty keep their previous products.
func (s Service) Refresh(ctx context.Context) error {
	const op = "Service.Refresh"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.source == nil {
		return fmt.Errorf("%s: %w", op, ErrNoSource)
	}

	next, err := s.source.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.writeMu.Lock()
	next = catalog.KeepNonEmptySites(s.current.Load().catalog, next)
	s.replace(next)
	s.writeMu.Unlock()

	log.Info(
		"catalog is loaded",
		"nProducts", len(next.Products), "nSites", len(next.Sites),
	)

	if err := s.persist(ctx, next.Products); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Restore fills an empty snapshot from storage.
func (s Service) Restore(ctx context.Context) error {
	const op = "Service.Restore"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.storage == nil {
		return nil
	}

	ps, err := s.storage.ReadProducts(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if len(s.products()) != 0 || len(ps) == 0 {
		return nil
	}

	s.replace(domain.Catalog{
		Sites:    catalog.RecountSites(nil, ps, ""),
		Products: ps,
	})
	log.Info("catalog is restored", "nProducts", len(ps))
	return nil
}

// RunRefresher refreshes the catalog every interval until ctx is done.
func (s Service) RunRefresher(ctx context.Context, interval time.Duration) {
	const op = "Service.RunRefresher"
	log := slog.With("op", op)

	if interval <= 0 {
		log.Info("periodic refresh is disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				log.Error("failed to refresh catalog", "err", err)
			}
		}
	}
}

// SendProducts publishes normalized products for ingestion.
func (s Service) SendProducts(ctx context.Context, ps []domain.Product) error {
	const op = "Service.SendProducts"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.producer == nil {
		return fmt.Errorf("%s: %w", op, ErrIngestDisabled)
	}

	if len(ps) == 0 {
		return fmt.Errorf("%s: %w", op, ErrNothingToUpdate)
	}

	err := s.producer.ProduceProducts(ctx, ps)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SaveProducts merges ingested products into the current snapshot.
func (s Service) SaveProducts(ctx context.Context, ps []domain.Product) error {
	const op = "Service.SaveProducts"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(ps) == 0 {
		return nil
	}

	s.writeMu.Lock()
	cur := s.current.Load().catalog
	now := time.Now().UTC().Format(time.RFC3339)
	merged := catalog.Upsert(cur.Products, ps)
	s.replace(domain.Catalog{
		LastUpdated: now,
		Sites:       catalog.RecountSites(cur.Sites, merged, now),
		Products:    merged,
	})
	s.writeMu.Unlock()

	if err := s.persist(ctx, ps); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s Service) persist(ctx context.Context, ps []domain.Product) error {
	if s.storage == nil || len(ps) == 0 {
		return nil
	}
	return s.storage.StoreProducts(ctx, ps)
}
