package httphandler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/niksmo/pc-catalog/internal/adapter/httphandler"
	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/niksmo/pc-catalog/internal/core/imagery"
	"github.com/niksmo/pc-catalog/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockQuerier struct {
	mock.Mock
}

func (q *MockQuerier) Query(
	ctx context.Context, intent domain.QueryIntent, visible int,
) (domain.Page, error) {
	args := q.Called(ctx, intent, visible)
	return args.Get(0).(domain.Page), args.Error(1)
}

func (q *MockQuerier) Product(
	ctx context.Context, id string,
) (domain.Product, error) {
	args := q.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (q *MockQuerier) RetailerFacets(
	ctx context.Context, intent domain.QueryIntent,
) ([]domain.RetailerFacet, error) {
	args := q.Called(ctx, intent)
	vs, _ := args.Get(0).([]domain.RetailerFacet)
	return vs, args.Error(1)
}

func (q *MockQuerier) CategoryCounts(ctx context.Context) (map[string]int, error) {
	args := q.Called(ctx)
	vs, _ := args.Get(0).(map[string]int)
	return vs, args.Error(1)
}

func (q *MockQuerier) Favorites(
	ctx context.Context, ids map[string]struct{},
) ([]domain.Product, error) {
	args := q.Called(ctx, ids)
	vs, _ := args.Get(0).([]domain.Product)
	return vs, args.Error(1)
}

func (q *MockQuerier) ResolveImage(p domain.Product) domain.ImageResult {
	return imagery.Resolve(p, imagery.DefaultPolicyTable())
}

type MockReporter struct {
	mock.Mock
}

func (r *MockReporter) Status(ctx context.Context) (domain.Status, error) {
	args := r.Called(ctx)
	return args.Get(0).(domain.Status), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (s *MockSender) SendProducts(ctx context.Context, ps []domain.Product) error {
	args := s.Called(ctx, ps)
	return args.Error(0)
}

var gpu = domain.Product{
	ID:               "alityan-0",
	Title:            "AMD RX 7800 XT",
	Price:            720000,
	CompareAtPrice:   800000,
	Retailer:         "Alityan",
	Site:             "alityan",
	Category:         "GPU",
	InStock:          true,
	URL:              "https://alityan.example/rx",
	Image:            domain.ImageField{Text: "/rx.jpg"},
	ImageURL:         "/rx.jpg",
	ProcessedImage:   "/rx.png",
	DetectedCurrency: "IQD",
}

func newCatalogMux(q *MockQuerier) *http.ServeMux {
	mux := http.NewServeMux()
	httphandler.RegisterCatalog(mux, q, 24)
	return mux
}

func TestGetProducts(t *testing.T) {
	t.Run("DefaultIntent", func(t *testing.T) {
		q := new(MockQuerier)
		want := domain.QueryIntent{
			SelectedRetailer: domain.AllRetailers,
			ShowOutOfStock:   true,
		}
		q.On("Query", mock.Anything, want, 24).Return(
			domain.Page{Items: []domain.Product{gpu}, Total: 30, HasMore: true},
			nil,
		)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
		newCatalogMux(q).ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var page httphandler.Page
		require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
		assert.Equal(t, 30, page.Total)
		assert.True(t, page.HasMore)
		require.Len(t, page.Items, 1)

		item := page.Items[0]
		assert.Equal(t, "720,000 IQD", item.DisplayPrice)
		assert.Equal(t, "800,000 IQD", item.DisplayCompareAtPrice)
		assert.Equal(t, 10, item.DiscountPercentage)
		assert.Equal(t, 80000.0, item.Savings)
		assert.Equal(t, "/rx.png", item.Image.URL)
		assert.Equal(t, string(domain.ImageProcessed), item.Image.Type)
	})

	t.Run("Filters", func(t *testing.T) {
		q := new(MockQuerier)
		want := domain.QueryIntent{
			Query:              "7800 xt",
			SelectedRetailer:   "Alityan",
			SelectedCategory:   "GPU",
			ShowOutOfStock:     false,
			ShowOnDiscountOnly: true,
			Sort:               domain.SortPriceAsc,
		}
		q.On("Query", mock.Anything, want, 48).Return(domain.Page{}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(
			http.MethodGet,
			"/v1/products?q=7800+xt&retailer=Alityan&category=GPU"+
				"&out_of_stock=false&discount_only=1&sort=price-asc&limit=48",
			nil,
		)
		newCatalogMux(q).ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		q.AssertExpectations(t)
		assert.JSONEq(t, `{"items":[],"total":0,"has_more":false}`, w.Body.String())
	})

	t.Run("InvalidParams", func(t *testing.T) {
		for _, query := range []string{
			"sort=cheapest",
			"limit=-1",
			"limit=many",
			"out_of_stock=maybe",
			"discount_only=sure",
		} {
			q := new(MockQuerier)
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/v1/products?"+query, nil)
			newCatalogMux(q).ServeHTTP(w, r)

			assert.Equal(t, http.StatusBadRequest, w.Code, query)
			q.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("QueryFails", func(t *testing.T) {
		q := new(MockQuerier)
		q.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(
			domain.Page{}, context.DeadlineExceeded,
		)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
		newCatalogMux(q).ServeHTTP(w, r)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestGetProduct(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		q := new(MockQuerier)
		q.On("Product", mock.Anything, "alityan-0").Return(gpu, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/products/alityan-0", nil)
		newCatalogMux(q).ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var v httphandler.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
		assert.Equal(t, "alityan-0", v.ID)
		assert.Equal(t, "720,000 IQD", v.DisplayPrice)
	})

	t.Run("NotFound", func(t *testing.T) {
		q := new(MockQuerier)
		q.On("Product", mock.Anything, "none").Return(
			domain.Product{}, fmt.Errorf("Service.Product: %w", domain.ErrProductNotFound),
		)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/products/none", nil)
		newCatalogMux(q).ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Fails", func(t *testing.T) {
		q := new(MockQuerier)
		q.On("Product", mock.Anything, "x").Return(
			domain.Product{}, context.DeadlineExceeded,
		)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/products/x", nil)
		newCatalogMux(q).ServeHTTP(w, r)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestGetRetailerFacets(t *testing.T) {
	q := new(MockQuerier)
	q.On("RetailerFacets", mock.Anything, mock.Anything).Return(
		[]domain.RetailerFacet{
			{Name: domain.AllRetailers, Count: 3},
			{Name: "Alityan", Count: 2},
			{Name: "Miswag", Count: 1},
		}, nil,
	)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/facets/retailers?q=ram", nil)
	newCatalogMux(q).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"name":"All","count":3},
		{"name":"Alityan","count":2},
		{"name":"Miswag","count":1}
	]`, w.Body.String())
}

func TestGetCategories(t *testing.T) {
	q := new(MockQuerier)
	q.On("CategoryCounts", mock.Anything).Return(
		map[string]int{"GPU": 2, "RAM": 1}, nil,
	)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
	newCatalogMux(q).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"GPU":2,"RAM":1}`, w.Body.String())
}

func TestGetFavorites(t *testing.T) {
	q := new(MockQuerier)
	want := map[string]struct{}{"alityan-0": {}, "miswag-1": {}}
	q.On("Favorites", mock.Anything, want).Return(
		[]domain.Product{gpu}, nil,
	)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(
		http.MethodGet, "/v1/favorites?ids=alityan-0,+miswag-1,,", nil,
	)
	newCatalogMux(q).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var vs []httphandler.Product
	require.NoError(t, json.NewDecoder(w.Body).Decode(&vs))
	require.Len(t, vs, 1)
	assert.Equal(t, "alityan-0", vs[0].ID)
}

func TestGetStatus(t *testing.T) {
	rep := new(MockReporter)
	rep.On("Status", mock.Anything).Return(domain.Status{
		LastUpdated:   "2025-01-02T03:04:05",
		LoadedAt:      time.Date(2025, 1, 2, 3, 5, 0, 0, time.UTC),
		TotalProducts: 2,
		Sites: []domain.SiteStatus{
			{Name: "alityan", LastUpdated: "2025-01-02T03:04:05", ProductCount: 2},
		},
	}, nil)

	mux := http.NewServeMux()
	httphandler.RegisterStatus(mux, rep)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	mux.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"last_updated":"2025-01-02T03:04:05",
		"loaded_at":"2025-01-02T03:05:00Z",
		"total_products":2,
		"sites":[{"name":"alityan","last_updated":"2025-01-02T03:04:05","product_count":2}]
	}`, w.Body.String())
}

func TestPostListings(t *testing.T) {
	newMux := func(s *MockSender) http.Handler {
		mux := http.NewServeMux()
		httphandler.RegisterListings(mux, s)
		return httphandler.AllowJSON(mux)
	}

	post := func(body string) *http.Request {
		r := httptest.NewRequest(
			http.MethodPost, "/v1/listings", strings.NewReader(body),
		)
		r.Header.Set("Content-Type", "application/json")
		return r
	}

	t.Run("Accepted", func(t *testing.T) {
		s := new(MockSender)
		s.On("SendProducts", mock.Anything, mock.MatchedBy(
			func(ps []domain.Product) bool {
				return len(ps) == 1 &&
					ps[0].ID == "miswag-0" &&
					ps[0].Price == 95000 &&
					ps[0].Retailer == "miswag"
			},
		)).Return(nil)

		w := httptest.NewRecorder()
		newMux(s).ServeHTTP(w, post(
			`{"site":"miswag","products":[{"title":"32GB RAM Kit","price":"95,000 IQD"}]}`,
		))

		assert.Equal(t, http.StatusAccepted, w.Code)
		s.AssertExpectations(t)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		newMux(new(MockSender)).ServeHTTP(w, post(`{"site":`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("NoSite", func(t *testing.T) {
		w := httptest.NewRecorder()
		newMux(new(MockSender)).ServeHTTP(w, post(`{"products":[{}]}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("NoProducts", func(t *testing.T) {
		s := new(MockSender)
		s.On("SendProducts", mock.Anything, mock.Anything).Return(
			service.ErrNothingToUpdate,
		)

		w := httptest.NewRecorder()
		newMux(s).ServeHTTP(w, post(`{"site":"miswag","products":[]}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("IngestDisabled", func(t *testing.T) {
		s := new(MockSender)
		s.On("SendProducts", mock.Anything, mock.Anything).Return(
			service.ErrIngestDisabled,
		)

		w := httptest.NewRecorder()
		newMux(s).ServeHTTP(w, post(`{"site":"miswag","products":[{}]}`))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("WrongMediaType", func(t *testing.T) {
		r := httptest.NewRequest(
			http.MethodPost, "/v1/listings", strings.NewReader(`{}`),
		)
		r.Header.Set("Content-Type", "text/plain")

		w := httptest.NewRecorder()
		newMux(new(MockSender)).ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})
}
