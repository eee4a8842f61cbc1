// internal/adapters/in/http/storefront/handler/catalog_handler.go
package storefrontHandler

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	productdom "cosmetica/internal/domain/product"
)

// CatalogHandler serves product listing and detail.
//
// GET /storefront/products?category=&brand=&sort=&limit=
// GET /storefront/products/{id}
type CatalogHandler struct {
	catalog Catalog
	devices DeviceResolver
}

func NewCatalogHandler(catalog Catalog, devices DeviceResolver) http.Handler {
	return &CatalogHandler{catalog: catalog, devices: devices}
}

type productView struct {
	productdom.Product
	Wishlisted bool `json:"wishlisted"`
	InCart     bool `json:"inCart"`
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		internalError(w, "catalog handler is not configured")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	path := cleanPath(r.URL.Path)
	switch {
	case path == "/storefront/products":
		h.list(w, r)
	case strings.HasPrefix(path, "/storefront/products/"):
		id := strings.TrimPrefix(path, "/storefront/products/")
		if id == "" || strings.Contains(id, "/") {
			notFound(w)
			return
		}
		h.get(w, r, id)
	default:
		notFound(w)
	}
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := productdom.Filter{
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Sort:     productdom.ParseSort(q.Get("sort")),
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "invalid limit")
			return
		}
		f.Limit = n
	}

	items, err := h.catalog.List(r.Context(), f)
	if err != nil {
		log.Printf("[storefront.catalog] list failed filter=%+v err=%v", f, err)
		writeErrMsg(w, http.StatusBadGateway, "upstream", "could not load products")
		return
	}

	// flags are best-effort: a catalog page still renders without a device
	var dev *Device
	if h.devices != nil {
		dev, _ = device(discard{}, r, h.devices, "storefront.catalog")
	}

	out := make([]productView, 0, len(items))
	for _, p := range items {
		out = append(out, h.view(dev, p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"count": len(out),
	})
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		productError(w, err, "storefront.catalog")
		return
	}
	var dev *Device
	if h.devices != nil {
		dev, _ = device(discard{}, r, h.devices, "storefront.catalog")
	}
	writeJSON(w, http.StatusOK, h.view(dev, *p))
}

func (h *CatalogHandler) view(dev *Device, p productdom.Product) productView {
	v := productView{Product: p}
	if dev != nil {
		v.Wishlisted = dev.Wishlist.IsMember(p.ID)
		v.InCart = dev.Cart.Contains(p.ID)
	}
	return v
}

// discard swallows the error response of an optional device lookup.
type discard struct{}

func (discard) Header() http.Header { return http.Header{} }

func (discard) Write(b []byte) (int, error) { return len(b), nil }

func (discard) WriteHeader(int) {}
