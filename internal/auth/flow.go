package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"course-catalog-go/internal/apperrors"
	"course-catalog-go/internal/model"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// ErrInProgress rejects a submission made while another is outstanding.
var ErrInProgress = errors.New("a sign-in request is already in progress")

// Exchanger trades credentials for a session with the remote service.
type Exchanger interface {
	Login(ctx context.Context, email, password string) (model.Session, error)
	Signup(ctx context.Context, email, password string) (model.Session, error)
	GoogleLogin(ctx context.Context, credential string) (model.Session, error)
}

// SessionStore is where a successful exchange lands.
type SessionStore interface {
	SetSession(session model.Session) error
	ClearSession() error
	CurrentSession() (model.Session, bool)
}

type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type Registration struct {
	Email           string `validate:"required,email"`
	Password        string `validate:"required"`
	ConfirmPassword string
}

type Flow struct {
	exchanger Exchanger
	store     SessionStore
	validate  *validator.Validate

	mu    sync.Mutex
	state State
}

func NewFlow(exchanger Exchanger, store SessionStore) *Flow {
	f := &Flow{
		exchanger: exchanger,
		store:     store,
		validate:  validator.New(),
	}
	f.state = f.settledState()
	return f
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) SignIn(ctx context.Context, credentials Credentials) (model.Session, error) {
	credentials.Email = strings.TrimSpace(credentials.Email)
	if err := f.check(credentials); err != nil {
		return model.Session{}, err
	}

	return f.submit(func() (model.Session, error) {
		return f.exchanger.Login(ctx, credentials.Email, credentials.Password)
	})
}

// SignUp checks the confirmation locally; a mismatch never reaches the
// service.
func (f *Flow) SignUp(ctx context.Context, registration Registration) (model.Session, error) {
	registration.Email = strings.TrimSpace(registration.Email)
	if err := f.check(registration); err != nil {
		return model.Session{}, err
	}
	if registration.Password != registration.ConfirmPassword {
		return model.Session{}, apperrors.Validation("passwords do not match")
	}

	return f.submit(func() (model.Session, error) {
		return f.exchanger.Signup(ctx, registration.Email, registration.Password)
	})
}

// SignInFederated exchanges an identity-provider credential.
func (f *Flow) SignInFederated(ctx context.Context, credential string) (model.Session, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return model.Session{}, apperrors.Validation("identity provider credential is required")
	}

	return f.submit(func() (model.Session, error) {
		return f.exchanger.GoogleLogin(ctx, credential)
	})
}

func (f *Flow) SignOut() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.store.ClearSession(); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}

	f.state = Anonymous
	return nil
}

func (f *Flow) submit(exchange func() (model.Session, error)) (model.Session, error) {
	f.mu.Lock()
	if f.state == Authenticating {
		f.mu.Unlock()
		return model.Session{}, ErrInProgress
	}
	f.state = Authenticating
	f.mu.Unlock()

	session, err := exchange()
	if err == nil {
		err = f.store.SetSession(session)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		log.WithError(err).Debug("authentication failed")
		f.state = f.settledState()
		return model.Session{}, err
	}

	f.state = Authenticated
	return session, nil
}

func (f *Flow) settledState() State {
	if _, ok := f.store.CurrentSession(); ok {
		return Authenticated
	}
	return Anonymous
}

func (f *Flow) check(form any) error {
	err := f.validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Validation("%v", err)
	}

	first := fieldErrs[0]
	switch first.Tag() {
	case "required":
		return apperrors.Validation("%s is required", strings.ToLower(first.Field()))
	case "email":
		return apperrors.Validation("%q is not a valid email address", first.Value())
	default:
		return apperrors.Validation("%s is invalid", strings.ToLower(first.Field()))
	}
}
