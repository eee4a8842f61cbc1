// internal/adapters/in/http/storefront/handler/cart_handler.go
package storefrontHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	cartdom "cosmetica/internal/domain/cart"
)

// CartHandler serves the device cart.
//
// GET    /storefront/cart        view
// DELETE /storefront/cart        clear
// POST   /storefront/cart/items  add {productId, quantity}
// PUT    /storefront/cart/items  set quantity {productId, quantity}
// DELETE /storefront/cart/items  remove ?productId= (or body)
type CartHandler struct {
	catalog Catalog
	devices DeviceResolver
}

func NewCartHandler(catalog Catalog, devices DeviceResolver) http.Handler {
	return &CartHandler{catalog: catalog, devices: devices}
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := cleanPath(r.URL.Path)

	switch {
	case path == "/storefront/cart" && r.Method == http.MethodGet:
		h.handleGet(w, r)
	case path == "/storefront/cart" && r.Method == http.MethodDelete:
		h.handleClear(w, r)
	case path == "/storefront/cart/items" && r.Method == http.MethodPost:
		h.handleAdd(w, r)
	case path == "/storefront/cart/items" && r.Method == http.MethodPut:
		h.handleSetQty(w, r)
	case path == "/storefront/cart/items" && r.Method == http.MethodDelete:
		h.handleRemove(w, r)
	case path == "/storefront/cart" || path == "/storefront/cart/items":
		methodNotAllowed(w)
	default:
		notFound(w)
	}
}

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	dev, ok := device(w, r, h.devices, "storefront.cart")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newCartView(r.Context(), dev.Cart.State(), h.catalog))
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	dev, ok := device(w, r, h.devices, "storefront.cart")
	if !ok {
		return
	}
	dev.Cart.Clear()
	writeJSON(w, http.StatusOK, newCartView(r.Context(), dev.Cart.State(), h.catalog))
}

func (h *CartHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty <= 0 {
		badRequest(w, "quantity must be positive")
		return
	}
	if h.catalog == nil {
		internalError(w, "cart handler is not configured")
		return
	}

	dev, ok := device(w, r, h.devices, "storefront.cart")
	if !ok {
		return
	}

	p, err := h.catalog.Lookup(r.Context(), req.ProductID)
	if err != nil {
		productError(w, err, "storefront.cart")
		return
	}
	if !p.InStock {
		writeErr(w, http.StatusConflict, "out_of_stock")
		return
	}

	err = dev.Cart.Add(cartdom.Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Image:     p.Image,
		Quantity:  qty,
	})
	if err != nil {
		if errors.Is(err, cartdom.ErrInvalidLine) {
			badRequest(w, err.Error())
			return
		}
		log.Printf("[storefront.cart] add failed device=%s product=%s err=%v", dev.ID, p.ID, err)
		internalError(w, "could not add to cart")
		return
	}
	writeJSON(w, http.StatusOK, newCartView(r.Context(), dev.Cart.State(), h.catalog))
}

func (h *CartHandler) handleSetQty(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" || req.Quantity == nil {
		badRequest(w, "productId and quantity are required")
		return
	}
	if *req.Quantity < 0 {
		badRequest(w, "quantity must not be negative")
		return
	}

	dev, ok := device(w, r, h.devices, "storefront.cart")
	if !ok {
		return
	}

	// quantity 0 removes the line
	if !dev.Cart.SetQuantity(req.ProductID, *req.Quantity) && !dev.Cart.Contains(req.ProductID) && *req.Quantity > 0 {
		writeErr(w, http.StatusNotFound, "not_in_cart")
		return
	}
	writeJSON(w, http.StatusOK, newCartView(r.Context(), dev.Cart.State(), h.catalog))
}

func (h *CartHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("productId"))
	if id == "" {
		var req cartItemRequest
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

	dev, ok := device(w, r, h.devices, "storefront.cart")
	if !ok {
		return
	}
	dev.Cart.Remove(id)
	writeJSON(w, http.StatusOK, newCartView(r.Context(), dev.Cart.State(), h.catalog))
}
