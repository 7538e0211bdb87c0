package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/niksmo/pc-catalog/internal/core/catalog"
	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/niksmo/pc-catalog/internal/core/ingest"
	"github.com/niksmo/pc-catalog/internal/core/port"
	"github.com/niksmo/pc-catalog/internal/core/service"
	"github.com/spf13/cast"
)

var errInvalidSort = errors.New("invalid sort option")

// GET v1/products?q=&retailer=&category=&out_of_stock=&discount_only=&sort=&limit=
// GET v1/products/{id} (200 OK, 404 Not found)
// GET v1/facets/retailers (same filters, retailer and sort are ignored)
// GET v1/categories
// GET v1/favorites?ids=a,b

type CatalogHandler struct {
	querier  port.CatalogQuerier
	pageSize int
}

func RegisterCatalog(
	mux *http.ServeMux, querier port.CatalogQuerier, pageSize int,
) {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	h := CatalogHandler{querier, pageSize}
	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /v1/facets/retailers", h.GetRetailerFacets)
	mux.HandleFunc("GET /v1/categories", h.GetCategories)
	mux.HandleFunc("GET /v1/favorites", h.GetFavorites)
}

func (h CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProducts"
	log := slog.With("op", op)

	query := r.URL.Query()
	intent, err := parseIntent(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	visible := h.pageSize
	if s := query.Get("limit"); s != "" {
		visible, err = cast.ToIntE(s)
		if err != nil || visible <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
	}

	page, err := h.querier.Query(r.Context(), intent, visible)
	if err != nil {
		http.Error(w, "failed to query catalog", http.StatusServiceUnavailable)
		log.Error("failed to query catalog", "err", err)
		return
	}

	writeJSON(w, log, Page{
		Items:   toProducts(page.Items, h.querier.ResolveImage),
		Total:   page.Total,
		HasMore: page.HasMore,
	})
}

func (h CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetProduct"
	log := slog.With("op", op)

	p, err := h.querier.Product(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to read product", http.StatusServiceUnavailable)
		log.Error("failed to read product", "err", err)
		return
	}
	writeJSON(w, log, toProduct(p, h.querier.ResolveImage))
}

func (h CatalogHandler) GetRetailerFacets(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetRetailerFacets"
	log := slog.With("op", op)

	intent, err := parseIntent(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	facets, err := h.querier.RetailerFacets(r.Context(), intent)
	if err != nil {
		http.Error(w, "failed to count retailers", http.StatusServiceUnavailable)
		log.Error("failed to count retailers", "err", err)
		return
	}

	vs := make([]RetailerFacet, 0, len(facets))
	for _, f := range facets {
		vs = append(vs, RetailerFacet(f))
	}
	writeJSON(w, log, vs)
}

func (h CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetCategories"
	log := slog.With("op", op)

	counts, err := h.querier.CategoryCounts(r.Context())
	if err != nil {
		http.Error(w, "failed to count categories", http.StatusServiceUnavailable)
		log.Error("failed to count categories", "err", err)
		return
	}
	writeJSON(w, log, counts)
}

func (h CatalogHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetFavorites"
	log := slog.With("op", op)

	ids := make(map[string]struct{})
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids[id] = struct{}{}
		}
	}

	ps, err := h.querier.Favorites(r.Context(), ids)
	if err != nil {
		http.Error(w, "failed to read favorites", http.StatusServiceUnavailable)
		log.Error("failed to read favorites", "err", err)
		return
	}
	writeJSON(w, log, toProducts(ps, h.querier.ResolveImage))
}

// parseIntent reads query parameters on top of the default intent.
func parseIntent(q url.Values) (domain.QueryIntent, error) {
	intent := catalog.DefaultIntent()
	intent.Query = q.Get("q")

	if v := q.Get("retailer"); v != "" {
		intent.SelectedRetailer = v
	}
	intent.SelectedCategory = q.Get("category")

	if v := q.Get("out_of_stock"); v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return domain.QueryIntent{}, errors.New("invalid out_of_stock")
		}
		intent.ShowOutOfStock = b
	}

	if v := q.Get("discount_only"); v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return domain.QueryIntent{}, errors.New("invalid discount_only")
		}
		intent.ShowOnDiscountOnly = b
	}

	switch s := domain.SortOption(q.Get("sort")); s {
	case domain.SortUnset, domain.SortBestSelling, domain.SortPriceAsc,
		domain.SortPriceDesc, domain.SortRelevance:
		intent.Sort = s
	default:
		return domain.QueryIntent{}, errInvalidSort
	}

	return intent, nil
}

// GET v1/status (200 OK)

type StatusHandler struct {
	reporter port.StatusReporter
}

func RegisterStatus(mux *http.ServeMux, reporter port.StatusReporter) {
	h := StatusHandler{reporter}
	mux.HandleFunc("GET /v1/status", h.GetStatus)
}

func (h StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	const op = "StatusHandler.GetStatus"
	log := slog.With("op", op)

	s, err := h.reporter.Status(r.Context())
	if err != nil {
		http.Error(w, "failed to read status", http.StatusServiceUnavailable)
		log.Error("failed to read status", "err", err)
		return
	}
	writeJSON(w, log, toStatus(s))
}

// POST v1/listings JSON {"site": string, "products": [raw records]}
// (202 Accepted, 400 Bad request, 503 Service unavailable)

type ListingsHandler struct {
	sender port.ProductsSender
}

func RegisterListings(mux *http.ServeMux, sender port.ProductsSender) {
	h := ListingsHandler{sender}
	mux.HandleFunc("POST /v1/listings", h.PostListings)
}

func (h ListingsHandler) PostListings(w http.ResponseWriter, r *http.Request) {
	const op = "ListingsHandler.PostListings"
	log := slog.With("op", op)

	var ls Listings
	err := json.NewDecoder(r.Body).Decode(&ls)
	if err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	if strings.TrimSpace(ls.Site) == "" {
		http.Error(w, "site is required", http.StatusBadRequest)
		return
	}

	ps := ingest.NormalizeAll(ls.Products, ls.Site)
	err = h.sender.SendProducts(r.Context(), ps)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNothingToUpdate):
			http.Error(w, "no products", http.StatusBadRequest)
		default:
			http.Error(
				w, "failed to accept listings", http.StatusServiceUnavailable,
			)
			log.Error("failed to send products", "err", err)
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
	if _, err = w.Write([]byte("Accepted")); err != nil {
		log.Error("failed to write response body", "err", err)
		return
	}

	log.Info("accepted", "site", ls.Site, "nProducts", len(ps))
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}
