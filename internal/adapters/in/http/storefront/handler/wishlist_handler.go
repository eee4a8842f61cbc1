// internal/adapters/in/http/storefront/handler/wishlist_handler.go
package storefrontHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	sessiondom "cosmetica/internal/domain/session"
	wldom "cosmetica/internal/domain/wishlist"
)

// WishlistHandler serves the device wishlist.
//
// GET    /storefront/wishlist[?refresh=1]
// DELETE /storefront/wishlist
// POST   /storefront/wishlist/items   {productId}
// DELETE /storefront/wishlist/items   ?productId=
// POST   /storefront/wishlist/toggle  {productId}
type WishlistHandler struct {
	catalog Catalog
	devices DeviceResolver
}

func NewWishlistHandler(catalog Catalog, devices DeviceResolver) http.Handler {
	return &WishlistHandler{catalog: catalog, devices: devices}
}

type wishlistItemRequest struct {
	ProductID string `json:"productId"`
}

func (h *WishlistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := cleanPath(r.URL.Path)

	switch {
	case path == "/storefront/wishlist" && r.Method == http.MethodGet:
		h.handleGet(w, r)
	case path == "/storefront/wishlist" && r.Method == http.MethodDelete:
		h.handleClear(w, r)
	case path == "/storefront/wishlist/items" && r.Method == http.MethodPost:
		h.handleAdd(w, r)
	case path == "/storefront/wishlist/items" && r.Method == http.MethodDelete:
		h.handleRemove(w, r)
	case path == "/storefront/wishlist/toggle" && r.Method == http.MethodPost:
		h.handleToggle(w, r)
	case path == "/storefront/wishlist" || path == "/storefront/wishlist/items" || path == "/storefront/wishlist/toggle":
		methodNotAllowed(w)
	default:
		notFound(w)
	}
}

func (h *WishlistHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	dev, ok := device(w, r, h.devices, "storefront.wishlist")
	if !ok {
		return
	}
	if queryBool(r, "refresh") {
		err := dev.Wishlist.Refresh(r.Context())
		if err != nil && !errors.Is(err, sessiondom.ErrNotSignedIn) {
			// the local copy is still shown
			log.Printf("[storefront.wishlist] refresh failed device=%s err=%v", dev.ID, err)
		}
	}
	writeJSON(w, http.StatusOK, newWishlistView(r.Context(), dev.Wishlist.State(), h.catalog))
}

func (h *WishlistHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	dev, ok := device(w, r, h.devices, "storefront.wishlist")
	if !ok {
		return
	}
	dev.Wishlist.Clear()
	writeJSON(w, http.StatusOK, newWishlistView(r.Context(), dev.Wishlist.State(), h.catalog))
}

// entry reads {productId} and builds the entry from the catalog.
func (h *WishlistHandler) entry(w http.ResponseWriter, r *http.Request) (wldom.Entry, bool) {
	var req wishlistItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid json")
		return wldom.Entry{}, false
	}
	if h.catalog == nil {
		internalError(w, "wishlist handler is not configured")
		return wldom.Entry{}, false
	}
	p, err := h.catalog.Lookup(r.Context(), req.ProductID)
	if err != nil {
		productError(w, err, "storefront.wishlist")
		return wldom.Entry{}, false
	}
	return wldom.Entry{ProductID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image}, true
}

func (h *WishlistHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}
	dev, ok := device(w, r, h.devices, "storefront.wishlist")
	if !ok {
		return
	}
	added, err := dev.Wishlist.Add(e)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"added":    added,
		"wishlist": newWishlistView(r.Context(), dev.Wishlist.State(), h.catalog),
	})
}

func (h *WishlistHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("productId"))
	if id == "" {
		var req wishlistItemRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, "invalid json")
			return
		}
		id = strings.TrimSpace(req.ProductID)
	}
	if id == "" {
		badRequest(w, "productId is required")
		return
	}

	dev, ok := device(w, r, h.devices, "storefront.wishlist")
	if !ok {
		return
	}
	removed := dev.Wishlist.Remove(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"removed":  removed,
		"wishlist": newWishlistView(r.Context(), dev.Wishlist.State(), h.catalog),
	})
}

func (h *WishlistHandler) handleToggle(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(w, r)
	if !ok {
		return
	}
	dev, ok := device(w, r, h.devices, "storefront.wishlist")
	if !ok {
		return
	}
	member, err := dev.Wishlist.Toggle(e)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"wishlisted": member,
		"wishlist":   newWishlistView(r.Context(), dev.Wishlist.State(), h.catalog),
	})
}
