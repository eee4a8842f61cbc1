// internal/adapters/in/http/storefront/handler/views.go
package storefrontHandler

import (
	"context"

	cartuc "cosmetica/internal/application/usecase/cart"
	wishlistuc "cosmetica/internal/application/usecase/wishlist"
	cartdom "cosmetica/internal/domain/cart"
	customerdom "cosmetica/internal/domain/customer"
	sessiondom "cosmetica/internal/domain/session"
	wldom "cosmetica/internal/domain/wishlist"
)

type cartLineView struct {
	cartdom.Line
	LineTotal float64 `json:"lineTotal"`
}

type cartView struct {
	Status     cartuc.Status  `json:"status"`
	Lines      []cartLineView `json:"lines"`
	TotalItems int            `json:"totalItems"`
	Subtotal   float64        `json:"subtotal"`
	Syncing    bool           `json:"syncing"`
}

// images may be nil (references are returned as stored).
func newCartView(ctx context.Context, st cartuc.State, images Catalog) cartView {
	lines := make([]cartLineView, 0, len(st.Lines))
	for _, l := range st.Lines {
		if images != nil {
			l.Image = images.ImageURL(ctx, l.Image)
		}
		lines = append(lines, cartLineView{Line: l, LineTotal: l.UnitPrice * float64(l.Quantity)})
	}
	return cartView{
		Status:     st.Status,
		Lines:      lines,
		TotalItems: st.TotalItems,
		Subtotal:   st.Subtotal,
		Syncing:    st.Syncing,
	}
}

type wishlistView struct {
	Status  wishlistuc.Status `json:"status"`
	Entries []wldom.Entry     `json:"entries"`
	Count   int               `json:"count"`
	Syncing bool              `json:"syncing"`
}

func newWishlistView(ctx context.Context, st wishlistuc.State, images Catalog) wishlistView {
	entries := make([]wldom.Entry, 0, len(st.Entries))
	for _, e := range st.Entries {
		if images != nil {
			e.Image = images.ImageURL(ctx, e.Image)
		}
		entries = append(entries, e)
	}
	return wishlistView{Status: st.Status, Entries: entries, Count: st.Count, Syncing: st.Syncing}
}

type sessionView struct {
	SignedIn bool                 `json:"signedIn"`
	Loading  bool                 `json:"loading"`
	Identity *sessiondom.Identity `json:"identity,omitempty"`
	Profile  *customerdom.Profile `json:"profile,omitempty"`
}

func newSessionView(s sessiondom.Session, loading bool) sessionView {
	return sessionView{
		SignedIn: s.IsSignedIn(),
		Loading:  loading,
		Identity: s.Identity,
		Profile:  s.Profile,
	}
}
