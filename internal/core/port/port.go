package port

import (
	"context"

	"github.com/niksmo/pc-catalog/internal/core/domain"
)

type CatalogQuerier interface {
	Query(context.Context, domain.QueryIntent, int) (domain.Page, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	RetailerFacets(context.Context, domain.QueryIntent) ([]domain.RetailerFacet, error)
	CategoryCounts(context.Context) (map[string]int, error)
	Favorites(context.Context, map[string]struct{}) ([]domain.Product, error)
	ResolveImage(domain.Product) domain.ImageResult
}

type StatusReporter interface {
	Status(context.Context) (domain.Status, error)
}

type CatalogRefresher interface {
	Refresh(context.Context) error
}

type ProductsSender interface {
	SendProducts(context.Context, []domain.Product) error
}

type ProductsSaver interface {
	SaveProducts(context.Context, []domain.Product) error
}

type CatalogSource interface {
	LoadCatalog(context.Context) (domain.Catalog, error)
}

type ProductsProducer interface {
	ProduceProducts(context.Context, []domain.Product) error
}

type ProductsStorage interface {
	StoreProducts(context.Context, []domain.Product) error
	ReadProducts(context.Context) ([]domain.Product, error)
	ReadProduct(ctx context.Context, id string) (domain.Product, error)
}
