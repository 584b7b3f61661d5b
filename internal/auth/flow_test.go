package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"course-catalog-go/internal/apperrors"
	"course-catalog-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ada = model.Session{
	Token: "token-ada",
	User:  model.User{ID: "u1", Email: "ada@example.com", Name: "Ada"},
}

type fakeExchanger struct {
	mu      sync.Mutex
	calls   []string
	session model.Session
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeExchanger) exchange(call string) (model.Session, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	return f.session, f.err
}

func (f *fakeExchanger) Login(_ context.Context, email, _ string) (model.Session, error) {
	return f.exchange("login " + email)
}

func (f *fakeExchanger) Signup(_ context.Context, email, _ string) (model.Session, error) {
	return f.exchange("signup " + email)
}

func (f *fakeExchanger) GoogleLogin(_ context.Context, credential string) (model.Session, error) {
	return f.exchange("google " + credential)
}

func (f *fakeExchanger) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type memoryStore struct {
	current *model.Session
	setErr  error
}

func (m *memoryStore) SetSession(session model.Session) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.current = &session
	return nil
}

func (m *memoryStore) ClearSession() error {
	m.current = nil
	return nil
}

func (m *memoryStore) CurrentSession() (model.Session, bool) {
	if m.current == nil {
		return model.Session{}, false
	}
	return *m.current, true
}

func TestInitialStateFollowsStore(t *testing.T) {
	assert.Equal(t, Anonymous, NewFlow(&fakeExchanger{}, &memoryStore{}).State())

	session := ada
	assert.Equal(t, Authenticated, NewFlow(&fakeExchanger{}, &memoryStore{current: &session}).State())
}

func TestSignInPopulatesStore(t *testing.T) {
	exchanger := &fakeExchanger{session: ada}
	store := &memoryStore{}
	flow := NewFlow(exchanger, store)

	session, err := flow.SignIn(context.Background(), Credentials{Email: " ada@example.com ", Password: "lovelace"})
	require.NoError(t, err)
	assert.Equal(t, ada, session)
	assert.Equal(t, Authenticated, flow.State())

	stored, ok := store.CurrentSession()
	require.True(t, ok)
	assert.Equal(t, ada.Token, stored.Token)
	assert.Equal(t, ada.User, stored.User)
	assert.Equal(t, []string{"login ada@example.com"}, exchanger.Calls())
}

func TestSignInFailureStaysAnonymous(t *testing.T) {
	exchanger := &fakeExchanger{err: apperrors.Auth("Invalid email or password")}
	store := &memoryStore{}
	flow := NewFlow(exchanger, store)

	_, err := flow.SignIn(context.Background(), Credentials{Email: "ada@example.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.Equal(t, Anonymous, flow.State())

	_, ok := store.CurrentSession()
	assert.False(t, ok)
}

func TestSignInValidatesLocally(t *testing.T) {
	exchanger := &fakeExchanger{session: ada}
	flow := NewFlow(exchanger, &memoryStore{})

	_, err := flow.SignIn(context.Background(), Credentials{Email: "not-an-email", Password: "x"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = flow.SignIn(context.Background(), Credentials{Email: "ada@example.com"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.Equal(t, "password is required", err.Error())

	assert.Empty(t, exchanger.Calls())
}

func TestSignUpPasswordMismatchNeverReachesNetwork(t *testing.T) {
	exchanger := &fakeExchanger{session: ada}
	store := &memoryStore{}
	flow := NewFlow(exchanger, store)

	_, err := flow.SignUp(context.Background(), Registration{
		Email:           "ada@example.com",
		Password:        "lovelace",
		ConfirmPassword: "lovelace!",
	})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, "passwords do not match", err.Error())
	assert.Empty(t, exchanger.Calls())
	assert.Equal(t, Anonymous, flow.State())
}

func TestSignUpSuccess(t *testing.T) {
	exchanger := &fakeExchanger{session: ada}
	store := &memoryStore{}
	flow := NewFlow(exchanger, store)

	_, err := flow.SignUp(context.Background(), Registration{
		Email:           "ada@example.com",
		Password:        "lovelace",
		ConfirmPassword: "lovelace",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"signup ada@example.com"}, exchanger.Calls())
	assert.Equal(t, Authenticated, flow.State())
}

func TestFederatedSignIn(t *testing.T) {
	exchanger := &fakeExchanger{session: ada}
	flow := NewFlow(exchanger, &memoryStore{})

	_, err := flow.SignInFederated(context.Background(), "  ")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = flow.SignInFederated(context.Background(), "idp-credential")
	require.NoError(t, err)
	assert.Equal(t, []string{"google idp-credential"}, exchanger.Calls())
}

func TestStoreFailureLeavesFlowAnonymous(t *testing.T) {
	exchanger := &fakeExchanger{session: ada}
	store := &memoryStore{setErr: errors.New("disk full")}
	flow := NewFlow(exchanger, store)

	_, err := flow.SignIn(context.Background(), Credentials{Email: "ada@example.com", Password: "lovelace"})
	require.Error(t, err)
	assert.Equal(t, Anonymous, flow.State())
}

func TestDuplicateSubmissionIsRejected(t *testing.T) {
	exchanger := &fakeExchanger{
		session: ada,
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	flow := NewFlow(exchanger, &memoryStore{})

	done := make(chan error, 1)
	go func() {
		_, err := flow.SignIn(context.Background(), Credentials{Email: "ada@example.com", Password: "lovelace"})
		done <- err
	}()

	<-exchanger.entered
	assert.Equal(t, Authenticating, flow.State())

	_, err := flow.SignIn(context.Background(), Credentials{Email: "ada@example.com", Password: "lovelace"})
	assert.ErrorIs(t, err, ErrInProgress)

	close(exchanger.block)
	require.NoError(t, <-done)
	assert.Equal(t, Authenticated, flow.State())
	assert.Len(t, exchanger.Calls(), 1)
}

func TestSignOutClearsStore(t *testing.T) {
	session := ada
	store := &memoryStore{current: &session}
	flow := NewFlow(&fakeExchanger{}, store)

	require.NoError(t, flow.SignOut())
	assert.Equal(t, Anonymous, flow.State())

	_, ok := store.CurrentSession()
	assert.False(t, ok)
}
