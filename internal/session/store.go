package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"course-catalog-go/internal/apperrors"
	"course-catalog-go/internal/model"
	"course-catalog-go/internal/storage"
	log "github.com/sirupsen/logrus"
)

// Keys the session is persisted under.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Store holds the current session and mirrors it to local storage so a new
// process starts already signed in.
type Store struct {
	storage storage.Client

	mu      sync.RWMutex
	current *model.Session
}

// NewStore loads any persisted session. A partial or unreadable persisted
// session is discarded.
func NewStore(s storage.Client) (*Store, error) {
	store := &Store{storage: s}

	loaded, err := store.load()
	if err != nil {
		return nil, err
	}

	if loaded == nil {
		if err := s.RemoveItems(TokenKey, UserKey); err != nil {
			return nil, fmt.Errorf("discarding partial session: %w", err)
		}
		return store, nil
	}

	store.current = loaded
	return store, nil
}

func (s *Store) load() (*model.Session, error) {
	token, hasToken, err := s.storage.GetItem(TokenKey)
	if err != nil {
		return nil, fmt.Errorf("reading persisted token: %w", err)
	}

	rawUser, hasUser, err := s.storage.GetItem(UserKey)
	if err != nil {
		return nil, fmt.Errorf("reading persisted user: %w", err)
	}

	if !hasToken || !hasUser {
		return nil, nil
	}

	var user model.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		log.Warnf("persisted user is not valid JSON, discarding session: %v", err)
		return nil, nil
	}

	loaded := model.Session{Token: token, User: user}
	if !loaded.Complete() {
		return nil, nil
	}

	return &loaded, nil
}

// SetSession replaces the stored session. Token and user are written in one
// storage transaction; the in-memory copy changes only after it commits.
func (s *Store) SetSession(session model.Session) error {
	if !session.Complete() {
		return apperrors.Validation("session must carry both a token and a user")
	}

	rawUser, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("encoding session user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.storage.SetItems(map[string]string{
		TokenKey: session.Token,
		UserKey:  string(rawUser),
	})
	if err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	s.current = &session
	return nil
}

// ClearSession removes the session from memory and from local storage.
func (s *Store) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.RemoveItems(TokenKey, UserKey); err != nil {
		return fmt.Errorf("removing persisted session: %w", err)
	}

	s.current = nil
	return nil
}

func (s *Store) CurrentSession() (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return model.Session{}, false
	}
	return *s.current, true
}

// Token returns the bearer token, or "" when signed out.
func (s *Store) Token() string {
	current, _ := s.CurrentSession()
	return current.Token
}
