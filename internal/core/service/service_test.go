package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/niksmo/pc-catalog/internal/core/catalog"
	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/niksmo/pc-catalog/internal/core/imagery"
	"github.com/niksmo/pc-catalog/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Catalog), args.Error(1)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) StoreProducts(ctx context.Context, ps []domain.Product) error {
	args := m.Called(ctx, ps)
	return args.Error(0)
}

func (m *MockStorage) ReadProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockStorage) ReadProduct(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) ProduceProducts(ctx context.Context, ps []domain.Product) error {
	args := m.Called(ctx, ps)
	return args.Error(0)
}

func testCatalog() domain.Catalog {
	return domain.Catalog{
		LastUpdated: "2025-01-01T00:00:00",
		Sites: []domain.SiteStatus{
			{Name: "globaliraq", ProductCount: 2},
			{Name: "alityan", ProductCount: 1},
		},
		Products: []domain.Product{
			{ID: "g1", Title: "AMD RX 7800 XT", Price: 750000, Retailer: "GlobalIraq", Site: "globaliraq", Category: "GPU", InStock: true},
			{ID: "g2", Title: "RTX 4060", Price: 500000, Retailer: "GlobalIraq", Site: "globaliraq", Category: "GPU", InStock: true},
			{ID: "a1", Title: "32GB RAM Kit", Price: 120000, Retailer: "Alityan", Site: "alityan", Category: "RAM", InStock: true},
		},
	}
}

func loaded(t *testing.T) service.Service {
	t.Helper()
	src := new(MockSource)
	src.On("LoadCatalog", mock.Anything).Return(testCatalog(), nil)

	s := service.New(src, nil, nil, imagery.NewResolver(nil))
	require.NoError(t, s.Refresh(t.Context()))
	return s
}

func TestServiceRefreshAndQuery(t *testing.T) {
	s := loaded(t)

	page, err := s.Query(t.Context(), catalog.DefaultIntent(), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.True(t, page.HasMore)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "g1", page.Items[0].ID)

	status, err := s.Status(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalProducts)
	assert.Equal(t, "2025-01-01T00:00:00", status.LastUpdated)
	assert.False(t, status.LoadedAt.IsZero())

	counts, err := s.CategoryCounts(t.Context())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"GPU": 2, "RAM": 1}, counts)

	facets, err := s.RetailerFacets(t.Context(), catalog.DefaultIntent())
	require.NoError(t, err)
	assert.Equal(t, domain.RetailerFacet{Name: "All", Count: 3}, facets[0])

	favs, err := s.Favorites(t.Context(), map[string]struct{}{"a1": {}})
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "a1", favs[0].ID)
}

func TestServiceProduct(t *testing.T) {
	t.Run("FromSnapshot", func(t *testing.T) {
		s := loaded(t)
		p, err := s.Product(t.Context(), "a1")
		require.NoError(t, err)
		assert.Equal(t, "32GB RAM Kit", p.Title)
	})

	t.Run("NotFoundWithoutStorage", func(t *testing.T) {
		s := loaded(t)
		_, err := s.Product(t.Context(), "zz")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("FallsBackToStorage", func(t *testing.T) {
		storage := new(MockStorage)
		stored := domain.Product{ID: "s1", Title: "Stored SSD"}
		storage.On("ReadProduct", mock.Anything, "s1").Return(stored, nil)
		storage.On("ReadProduct", mock.Anything, "zz").Return(
			domain.Product{}, domain.ErrProductNotFound,
		)

		s := service.New(nil, storage, nil, imagery.NewResolver(nil))

		p, err := s.Product(t.Context(), "s1")
		require.NoError(t, err)
		assert.Equal(t, stored, p)

		_, err = s.Product(t.Context(), "zz")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestServiceRefreshErrors(t *testing.T) {
	t.Run("NoSource", func(t *testing.T) {
		s := service.New(nil, nil, nil, imagery.NewResolver(nil))
		err := s.Refresh(t.Context())
		assert.ErrorIs(t, err, service.ErrNoSource)
	})

	t.Run("SourceFails", func(t *testing.T) {
		src := new(MockSource)
		errLoad := errors.New("boom")
		src.On("LoadCatalog", mock.Anything).Return(domain.Catalog{}, errLoad)

		s := service.New(src, nil, nil, imagery.NewResolver(nil))
		assert.ErrorIs(t, s.Refresh(t.Context()), errLoad)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		s := service.New(new(MockSource), nil, nil, imagery.NewResolver(nil))
		assert.ErrorIs(t, s.Refresh(ctx), context.Canceled)
		_, err := s.Query(ctx, catalog.DefaultIntent(), 0)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestServiceRefreshPersists(t *testing.T) {
	src := new(MockSource)
	src.On("LoadCatalog", mock.Anything).Return(testCatalog(), nil)
	storage := new(MockStorage)
	storage.On("StoreProducts", mock.Anything, testCatalog().Products).Return(nil)

	s := service.New(src, storage, nil, imagery.NewResolver(nil))
	require.NoError(t, s.Refresh(t.Context()))
	storage.AssertExpectations(t)
}

func TestServiceRefreshKeepsEmptySite(t *testing.T) {
	first := testCatalog()
	second := testCatalog()
	second.Sites[1].ProductCount = 0
	second.Products = second.Products[:2]

	src := new(MockSource)
	src.On("LoadCatalog", mock.Anything).Return(first, nil).Once()
	src.On("LoadCatalog", mock.Anything).Return(second, nil).Once()

	s := service.New(src, nil, nil, imagery.NewResolver(nil))
	require.NoError(t, s.Refresh(t.Context()))
	require.NoError(t, s.Refresh(t.Context()))

	status, err := s.Status(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalProducts)
}

func TestServiceRestore(t *testing.T) {
	stored := testCatalog().Products
	storage := new(MockStorage)
	storage.On("ReadProducts", mock.Anything).Return(stored, nil)

	s := service.New(nil, storage, nil, imagery.NewResolver(nil))
	require.NoError(t, s.Restore(t.Context()))

	status, err := s.Status(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalProducts)
	assert.Equal(t, []domain.SiteStatus{
		{Name: "globaliraq", ProductCount: 2},
		{Name: "alityan", ProductCount: 1},
	}, status.Sites)
}

func TestServiceSaveProducts(t *testing.T) {
	s := loaded(t)

	updates := []domain.Product{
		{ID: "a1", Title: "32GB RAM Kit", Price: 99000, Retailer: "Alityan", Site: "alityan", Category: "RAM", InStock: true},
		{ID: "k1", Title: "Case Fan", Price: 15000, Retailer: "Kolshzin", Site: "kolshzin", Category: "Other", InStock: true},
	}
	require.NoError(t, s.SaveProducts(t.Context(), updates))

	page, err := s.Query(t.Context(), catalog.DefaultIntent(), 0)
	require.NoError(t, err)
	require.Equal(t, 4, page.Total)
	assert.Equal(t, 99000.0, page.Items[2].Price)
	assert.Equal(t, "k1", page.Items[3].ID)

	status, err := s.Status(t.Context())
	require.NoError(t, err)
	require.Len(t, status.Sites, 3)
	assert.Equal(t, "kolshzin", status.Sites[2].Name)
}

func TestServiceSendProducts(t *testing.T) {
	ps := []domain.Product{{ID: "x"}}

	t.Run("Disabled", func(t *testing.T) {
		s := service.New(nil, nil, nil, imagery.NewResolver(nil))
		assert.ErrorIs(t, s.SendProducts(t.Context(), ps), service.ErrIngestDisabled)
	})

	t.Run("Empty", func(t *testing.T) {
		s := service.New(nil, nil, new(MockProducer), imagery.NewResolver(nil))
		assert.ErrorIs(t, s.SendProducts(t.Context(), nil), service.ErrNothingToUpdate)
	})

	t.Run("Produced", func(t *testing.T) {
		producer := new(MockProducer)
		producer.On("ProduceProducts", mock.Anything, ps).Return(nil)

		s := service.New(nil, nil, producer, imagery.NewResolver(nil))
		require.NoError(t, s.SendProducts(t.Context(), ps))
		producer.AssertExpectations(t)
	})
}

func TestServiceResolveImage(t *testing.T) {
	s := service.New(nil, nil, nil, imagery.NewResolver(nil))
	res := s.ResolveImage(domain.Product{Retailer: "Alityan", ProcessedImage: "/p.png"})
	assert.Equal(t, domain.ImageProcessed, res.Type)
}
