package local

import "cosmetica/internal/domain/session"

// TokenStore keeps the device's auth token in the "auth" slot.
type TokenStore struct {
	kv KV
}

var _ session.TokenStore = (*TokenStore)(nil)

func NewTokenStore(kv KV) *TokenStore { return &TokenStore{kv: kv} }

// LoadToken returns "" when no token is stored.
func (t *TokenStore) LoadToken() (string, error) {
	raw, ok, err := t.kv.Get(SlotAuth)
	if err != nil || !ok {
		return "", err
	}
	return string(raw), nil
}

func (t *TokenStore) SaveToken(token string) error {
	return t.kv.Set(SlotAuth, []byte(token))
}

func (t *TokenStore) DeleteToken() error {
	return t.kv.Delete(SlotAuth)
}
