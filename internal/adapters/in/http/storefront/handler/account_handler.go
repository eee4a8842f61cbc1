// internal/adapters/in/http/storefront/handler/account_handler.go
package storefrontHandler

import (
	"errors"
	"log"
	"net/http"

	accountuc "cosmetica/internal/application/usecase/account"
	authuc "cosmetica/internal/application/usecase/auth"
	customerdom "cosmetica/internal/domain/customer"
)

// AccountHandler serves the account page.
//
// GET   /storefront/account[?refresh=1]  profile + points
// PATCH /storefront/account              profile update
// PATCH /storefront/account/address      address update
// GET   /storefront/account/orders       order history
type AccountHandler struct {
	devices DeviceResolver
}

func NewAccountHandler(devices DeviceResolver) http.Handler {
	return &AccountHandler{devices: devices}
}

type profilePatchRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	customerdom.AddressFields
}

func (h *AccountHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := cleanPath(r.URL.Path)

	switch {
	case path == "/storefront/account" && r.Method == http.MethodGet:
		h.handleGet(w, r)
	case path == "/storefront/account" && r.Method == http.MethodPatch:
		h.handlePatch(w, r)
	case path == "/storefront/account/address" && r.Method == http.MethodPatch:
		h.handleAddress(w, r)
	case path == "/storefront/account/orders" && r.Method == http.MethodGet:
		h.handleOrders(w, r)
	case path == "/storefront/account" || path == "/storefront/account/address" || path == "/storefront/account/orders":
		methodNotAllowed(w)
	default:
		notFound(w)
	}
}

// writeAccountErr maps account errors; it reports whether it wrote.
func writeAccountErr(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, accountuc.ErrNotSignedIn):
		notSignedIn(w)
	case errors.Is(err, accountuc.ErrProfileMissing), errors.Is(err, customerdom.ErrNotFound):
		writeErr(w, http.StatusNotFound, "user_not_found")
	case writeValidation(w, err):
	case errors.Is(err, customerdom.ErrInvalidFirstName), errors.Is(err, customerdom.ErrInvalidLastName):
		badRequest(w, err.Error())
	default:
		log.Printf("[storefront.account] failed err=%v", err)
		writeErrMsg(w, http.StatusBadGateway, "upstream", err.Error())
	}
	return true
}

func (h *AccountHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	dev, ok := device(w, r, h.devices, "storefront.account")
	if !ok {
		return
	}
	ov, err := dev.Account.Overview(r.Context(), queryBool(r, "refresh"))
	if writeAccountErr(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (h *AccountHandler) handlePatch(w http.ResponseWriter, r *http.Request) {
	var req profilePatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	dev, ok := device(w, r, h.devices, "storefront.account")
	if !ok {
		return
	}

	res := dev.Account.UpdateProfile(r.Context(), customerdom.Patch{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		AddressFields: req.AddressFields,
	})
	h.respond(w, r, dev, res)
}

func (h *AccountHandler) handleAddress(w http.ResponseWriter, r *http.Request) {
	var req customerdom.AddressFields
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	dev, ok := device(w, r, h.devices, "storefront.account")
	if !ok {
		return
	}
	h.respond(w, r, dev, dev.Account.UpdateAddress(r.Context(), req))
}

// respond answers an update with the fresh overview.
func (h *AccountHandler) respond(w http.ResponseWriter, r *http.Request, dev *Device, res authuc.Result) {
	if !res.Success {
		writeAccountErr(w, res.Err)
		return
	}
	ov, err := dev.Account.Overview(r.Context(), false)
	if writeAccountErr(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (h *AccountHandler) handleOrders(w http.ResponseWriter, r *http.Request) {
	dev, ok := device(w, r, h.devices, "storefront.account")
	if !ok {
		return
	}
	orders, err := dev.Account.Orders(r.Context())
	if writeAccountErr(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"count":  len(orders),
	})
}
