package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"cosmetica/internal/adapters/out/firebase"
	"cosmetica/internal/adapters/out/memory"
	"cosmetica/internal/application/validation"
	customerdom "cosmetica/internal/domain/customer"
	sessiondom "cosmetica/internal/domain/session"
)

type harness struct {
	ids      *memory.Identities
	tokens   *memory.Tokens
	profiles *memory.CustomerRepository
	client   *firebase.Client
	store    *Store
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		ids:      memory.NewIdentities(),
		tokens:   &memory.Tokens{},
		profiles: memory.NewCustomerRepository(),
	}
	h.client = firebase.NewClient(h.ids, h.tokens)
	h.store = NewStore(h.client, h.profiles, WithClock(func() time.Time { return fixedNow }))
	t.Cleanup(h.store.Close)
	return h
}

func (h *harness) createIdentity(t *testing.T, email, password string) sessiondom.Identity {
	t.Helper()
	id, err := h.ids.CreateUser(context.Background(), email, password)
	if err != nil {
		t.Fatalf("create identity: %v", err)
	}
	return id
}

type recordingSender struct {
	sent []string
	err  error
}

func (r *recordingSender) SendVerification(_ context.Context, email, _ string) error {
	r.sent = append(r.sent, email)
	return r.err
}

func TestLogin_ProvisionsProfileOnFirstSignIn(t *testing.T) {
	h := newHarness(t)
	id := h.createIdentity(t, "ana@example.com", "secret1")

	res := h.store.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "secret1"})
	if !res.Success {
		t.Fatalf("login failed: %+v", res)
	}

	sess := h.store.Session()
	if !sess.IsSignedIn() || sess.UID() != id.UID {
		t.Fatalf("session = %+v", sess)
	}
	if sess.Profile == nil || sess.Profile.LoyaltyPoints != 0 || sess.Profile.FirstName != "" {
		t.Fatalf("provisioned profile = %+v", sess.Profile)
	}
	if !sess.Profile.CreatedAt.Equal(fixedNow) {
		t.Fatalf("createdAt = %v, want %v", sess.Profile.CreatedAt, fixedNow)
	}
	if _, err := h.profiles.GetByID(context.Background(), id.UID); err != nil {
		t.Fatalf("profile row not created: %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h := newHarness(t)
	h.createIdentity(t, "ana@example.com", "secret1")

	res := h.store.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "wrong-pw"})
	if res.Success || !errors.Is(res.Err, ErrInvalidCredentials) {
		t.Fatalf("res = %+v, want ErrInvalidCredentials", res)
	}
	if res.Message != "Invalid email or password." {
		t.Fatalf("message = %q", res.Message)
	}
	if h.store.Session().IsSignedIn() {
		t.Fatalf("session should stay signed out")
	}
}

func TestLogin_ProvisioningFailureLeavesNoSession(t *testing.T) {
	h := newHarness(t)
	h.createIdentity(t, "ana@example.com", "secret1")
	h.profiles.FailWith(errors.New("firestore unavailable"))

	res := h.store.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "secret1"})
	if res.Success || !errors.Is(res.Err, ErrProvisioning) {
		t.Fatalf("res = %+v, want ErrProvisioning", res)
	}
	if h.store.Session().IsSignedIn() {
		t.Fatalf("auth container must stay signed out")
	}
	cur, err := h.client.CurrentIdentity(context.Background())
	if err != nil || cur != nil {
		t.Fatalf("gateway identity = %+v err=%v, want signed out", cur, err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.createIdentity(t, "ana@example.com", "secret1")

	res := h.store.Register(context.Background(), RegisterInput{
		Email: "ana@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	if res.Success || !errors.Is(res.Err, ErrAlreadyRegistered) {
		t.Fatalf("res = %+v, want ErrAlreadyRegistered", res)
	}
}

func TestRegister_CreatesProfileSendsMailAndStaysSignedOut(t *testing.T) {
	h := newHarness(t)
	sender := &recordingSender{err: errors.New("smtp down")}
	h.store.verifier = sender

	res := h.store.Register(context.Background(), RegisterInput{
		Email: "ben@example.com", Password: "secret1", ConfirmPassword: "secret1",
		FirstName: "Ben", LastName: "Ito",
	})
	if !res.Success {
		t.Fatalf("register failed: %+v", res)
	}
	if h.store.Session().IsSignedIn() {
		t.Fatalf("register must not sign in")
	}
	if h.profiles.Len() != 1 {
		t.Fatalf("profiles = %d, want 1", h.profiles.Len())
	}
	if len(sender.sent) != 1 || sender.sent[0] != "ben@example.com" {
		t.Fatalf("verification mails = %v", sender.sent)
	}
}

func TestRegister_ProfileFailureRollsBackIdentity(t *testing.T) {
	h := newHarness(t)
	h.profiles.FailWith(errors.New("write failed"))

	res := h.store.Register(context.Background(), RegisterInput{
		Email: "cy@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	if res.Success || !errors.Is(res.Err, ErrProvisioning) {
		t.Fatalf("res = %+v", res)
	}
	if h.ids.Exists("cy@example.com") {
		t.Fatalf("identity should be deleted after failed profile creation")
	}
}

func TestRegister_ValidatesForm(t *testing.T) {
	h := newHarness(t)

	res := h.store.Register(context.Background(), RegisterInput{
		Email: "not-an-email", Password: "123", ConfirmPassword: "456",
	})
	var verrs validation.Errors
	if res.Success || !errors.As(res.Err, &verrs) {
		t.Fatalf("res = %+v, want validation errors", res)
	}
	fields := map[string]bool{}
	for _, fe := range verrs {
		fields[fe.Field] = true
	}
	for _, f := range []string{"email", "password", "confirmPassword"} {
		if !fields[f] {
			t.Errorf("missing error for %s in %v", f, verrs)
		}
	}
}

func TestSubscribers_SeeOneTransitionPerLogin(t *testing.T) {
	h := newHarness(t)
	h.createIdentity(t, "ana@example.com", "secret1")

	var transitions [][2]string
	h.store.Subscribe(func(prev, next sessiondom.Session) {
		transitions = append(transitions, [2]string{prev.UID(), next.UID()})
	})

	h.store.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "secret1"})
	h.store.Logout(context.Background())

	if len(transitions) != 2 {
		t.Fatalf("transitions = %v, want 2", transitions)
	}
	if transitions[0][0] != "" || transitions[0][1] == "" || transitions[1][1] != "" {
		t.Fatalf("transitions = %v", transitions)
	}
}

func TestRestore_UsesPersistedToken(t *testing.T) {
	h := newHarness(t)
	id := h.createIdentity(t, "ana@example.com", "secret1")
	if res := h.store.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "secret1"}); !res.Success {
		t.Fatalf("login: %+v", res)
	}

	// same device, fresh process state
	client := firebase.NewClient(h.ids, h.tokens)
	store := NewStore(client, h.profiles)
	defer store.Close()

	if err := store.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if store.Session().UID() != id.UID {
		t.Fatalf("restored session = %+v", store.Session())
	}

	// a revoked token restores to signed out
	h.ids.Revoke(id.UID)
	client2 := firebase.NewClient(h.ids, h.tokens)
	store2 := NewStore(client2, h.profiles)
	defer store2.Close()
	if err := store2.Restore(context.Background()); err != nil {
		t.Fatalf("restore revoked: %v", err)
	}
	if store2.Session().IsSignedIn() {
		t.Fatalf("revoked token must not restore a session")
	}
}

func TestUpdateAddress_WritesThroughAndUpdatesCache(t *testing.T) {
	h := newHarness(t)
	id := h.createIdentity(t, "ana@example.com", "secret1")
	h.store.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "secret1"})

	city := "Lyon"
	res := h.store.UpdateAddress(context.Background(), customerdom.AddressFields{City: &city})
	if !res.Success {
		t.Fatalf("update address: %+v", res)
	}

	if got := h.store.Session().Profile.City; got == nil || *got != "Lyon" {
		t.Fatalf("cached city = %v", got)
	}
	row, _ := h.profiles.GetByID(context.Background(), id.UID)
	if row.City == nil || *row.City != "Lyon" {
		t.Fatalf("stored city = %v", row.City)
	}
}

func TestUpdateProfile_KeepsServerOwnedFields(t *testing.T) {
	h := newHarness(t)
	id := h.createIdentity(t, "ana@example.com", "secret1")
	if res := h.store.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "secret1"}); !res.Success {
		t.Fatalf("login: %+v", res)
	}
	// points credited elsewhere after the profile was cached
	h.profiles.SetPoints(id.UID, 250)

	first := "Ana"
	if res := h.store.UpdateProfile(context.Background(), customerdom.Patch{FirstName: &first}); !res.Success {
		t.Fatalf("update profile: %+v", res)
	}

	row, _ := h.profiles.GetByID(context.Background(), id.UID)
	if row.LoyaltyPoints != 250 || row.FirstName != "Ana" {
		t.Fatalf("stored = points %d name %q, want 250 and Ana", row.LoyaltyPoints, row.FirstName)
	}
	cached := h.store.Session().Profile
	if cached.LoyaltyPoints != 250 || cached.FirstName != "Ana" {
		t.Fatalf("cached = points %d name %q", cached.LoyaltyPoints, cached.FirstName)
	}
}

func TestUpdateProfile_RequiresSignIn(t *testing.T) {
	h := newHarness(t)
	first := "Ana"
	res := h.store.UpdateProfile(context.Background(), customerdom.Patch{FirstName: &first})
	if res.Success || !errors.Is(res.Err, ErrNotSignedIn) {
		t.Fatalf("res = %+v", res)
	}
}
