// internal/adapters/in/http/storefront/handler/auth_handler.go
package storefrontHandler

import (
	"errors"
	"log"
	"net/http"

	authuc "cosmetica/internal/application/usecase/auth"
)

// AuthObserver records login/register outcomes (metrics).
type AuthObserver interface {
	AuthAttempt(op string, ok bool)
}

// AuthHandler serves sign-in, registration and sign-out.
//
// GET  /storefront/auth/session
// POST /storefront/auth/login     {email, password}
// POST /storefront/auth/register  {email, password, confirmPassword, firstName, lastName}
// POST /storefront/auth/logout
type AuthHandler struct {
	devices DeviceResolver
	obs     AuthObserver
}

func NewAuthHandler(devices DeviceResolver, obs AuthObserver) http.Handler {
	return &AuthHandler{devices: devices, obs: obs}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := cleanPath(r.URL.Path)

	switch {
	case path == "/storefront/auth/session" && r.Method == http.MethodGet:
		h.handleSession(w, r)
	case path == "/storefront/auth/login" && r.Method == http.MethodPost:
		h.handleLogin(w, r)
	case path == "/storefront/auth/register" && r.Method == http.MethodPost:
		h.handleRegister(w, r)
	case path == "/storefront/auth/logout" && r.Method == http.MethodPost:
		h.handleLogout(w, r)
	case path == "/storefront/auth/session" || path == "/storefront/auth/login" ||
		path == "/storefront/auth/register" || path == "/storefront/auth/logout":
		methodNotAllowed(w)
	default:
		notFound(w)
	}
}

func (h *AuthHandler) observe(op string, ok bool) {
	if h.obs != nil {
		h.obs.AuthAttempt(op, ok)
	}
}

func (h *AuthHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	dev, ok := device(w, r, h.devices, "storefront.auth")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(dev.Auth.Session(), dev.Auth.IsLoading()))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in authuc.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(w, "invalid json")
		return
	}
	dev, ok := device(w, r, h.devices, "storefront.auth")
	if !ok {
		return
	}

	res := dev.Auth.Login(r.Context(), in)
	h.observe("login", res.Success)
	if !res.Success {
		writeAuthFailure(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"session": newSessionView(dev.Auth.Session(), false),
	})
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in authuc.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(w, "invalid json")
		return
	}
	dev, ok := device(w, r, h.devices, "storefront.auth")
	if !ok {
		return
	}

	res := dev.Auth.Register(r.Context(), in)
	h.observe("register", res.Success)
	if !res.Success {
		writeAuthFailure(w, res)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Check your email to confirm your account, then sign in.",
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	dev, ok := device(w, r, h.devices, "storefront.auth")
	if !ok {
		return
	}
	dev.Auth.Logout(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"session": newSessionView(dev.Auth.Session(), false),
	})
}

// writeAuthFailure maps a failed Result to a status and an inline message.
func writeAuthFailure(w http.ResponseWriter, res authuc.Result) {
	if writeValidation(w, res.Err) {
		return
	}
	switch {
	case errors.Is(res.Err, authuc.ErrInvalidCredentials):
		writeErrMsg(w, http.StatusUnauthorized, "invalid_credentials", res.Message)
	case errors.Is(res.Err, authuc.ErrAlreadyRegistered):
		writeErrMsg(w, http.StatusConflict, "already_registered", res.Message)
	case errors.Is(res.Err, authuc.ErrProvisioning):
		writeErrMsg(w, http.StatusBadGateway, "provisioning_failed", res.Message)
	default:
		log.Printf("[storefront.auth] auth failed err=%v", res.Err)
		writeErrMsg(w, http.StatusBadGateway, "auth_failed", res.Message)
	}
}
