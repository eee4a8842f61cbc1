// internal/adapters/in/http/storefront/handler/checkout_handler.go
package storefrontHandler

import (
	"context"
	"errors"
	"log"
	"net/http"

	checkoutuc "cosmetica/internal/application/usecase/checkout"
	customerdom "cosmetica/internal/domain/customer"
)

// OrderObserver counts confirmed orders (metrics).
type OrderObserver interface {
	OrderPlaced()
}

// CheckoutHandler serves the checkout page.
//
// GET  /storefront/checkout  guard; 200 with the form prefill, or 303 with the redirect target
// POST /storefront/checkout  submit the shipping form
type CheckoutHandler struct {
	catalog Catalog
	devices DeviceResolver
	obs     OrderObserver
}

func NewCheckoutHandler(catalog Catalog, devices DeviceResolver, obs OrderObserver) http.Handler {
	return &CheckoutHandler{catalog: catalog, devices: devices, obs: obs}
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if cleanPath(r.URL.Path) != "/storefront/checkout" {
		notFound(w)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.handleGuard(w, r)
	case http.MethodPost:
		h.handleSubmit(w, r)
	default:
		methodNotAllowed(w)
	}
}

func redirect(w http.ResponseWriter, d checkoutuc.Decision) {
	writeJSON(w, http.StatusSeeOther, map[string]string{
		"decision": string(d),
		"redirect": d.Target(),
	})
}

func (h *CheckoutHandler) handleGuard(w http.ResponseWriter, r *http.Request) {
	dev, ok := device(w, r, h.devices, "storefront.checkout")
	if !ok {
		return
	}
	d := dev.Checkout.Guard()
	if d != checkoutuc.Proceed {
		redirect(w, d)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"decision": string(d),
		"cart":     newCartView(r.Context(), dev.Cart.State(), h.catalog),
		"prefill":  prefill(dev.Auth.Session().Profile),
	})
}

// prefill fills the shipping form from the stored profile.
func prefill(p *customerdom.Profile) checkoutuc.Form {
	if p == nil {
		return checkoutuc.Form{}
	}
	deref := func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	}
	return checkoutuc.Form{
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Email:      p.Email,
		Phone:      deref(p.Phone),
		Address:    deref(p.Address),
		City:       deref(p.City),
		State:      deref(p.State),
		PostalCode: deref(p.PostalCode),
		Country:    deref(p.Country),
	}
}

func (h *CheckoutHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var form checkoutuc.Form
	if err := decodeJSON(w, r, &form); err != nil {
		badRequest(w, "invalid json")
		return
	}
	dev, ok := device(w, r, h.devices, "storefront.checkout")
	if !ok {
		return
	}

	conf, err := dev.Checkout.Submit(r.Context(), form)
	if err != nil {
		switch {
		case writeValidation(w, err):
		case errors.Is(err, checkoutuc.ErrNotSignedIn):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not_signed_in", "redirect": checkoutuc.RedirectAccount.Target()})
		case errors.Is(err, checkoutuc.ErrEmptyCart):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "empty_cart", "redirect": checkoutuc.RedirectCart.Target()})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			log.Printf("[storefront.checkout] submit cancelled device=%s err=%v", dev.ID, err)
			writeErr(w, http.StatusServiceUnavailable, "cancelled")
		default:
			log.Printf("[storefront.checkout] submit failed device=%s err=%v", dev.ID, err)
			internalError(w, "checkout failed")
		}
		return
	}

	if h.obs != nil {
		h.obs.OrderPlaced()
	}
	for i := range conf.Lines {
		if h.catalog != nil {
			conf.Lines[i].Image = h.catalog.ImageURL(r.Context(), conf.Lines[i].Image)
		}
	}
	writeJSON(w, http.StatusCreated, conf)
}
