package memory

import "sync"

// Local is an in-process stand-in for one device's local snapshot slot.
// It satisfies cart.LocalRepository and wishlist.LocalRepository.
type Local[T any] struct {
	mu   sync.Mutex
	v    T
	set  bool
	fail error
}

func NewLocal[T any]() *Local[T] { return &Local[T]{} }

func (l *Local[T]) FailWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fail = err
}

func (l *Local[T]) Load() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if l.fail != nil {
		return zero, l.fail
	}
	if !l.set {
		return zero, nil
	}
	return l.v, nil
}

func (l *Local[T]) Save(v T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail != nil {
		return l.fail
	}
	l.v = v
	l.set = true
	return nil
}

// Tokens is an in-process session.TokenStore.
type Tokens struct {
	mu    sync.Mutex
	token string
}

func (t *Tokens) LoadToken() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token, nil
}

func (t *Tokens) SaveToken(token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = token
	return nil
}

func (t *Tokens) DeleteToken() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = ""
	return nil
}
