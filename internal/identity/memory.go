// Package identity provides an in-process identity provider with email and
// password accounts, bearer tokens and session change subscriptions.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/port"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var (
	ErrInvalidEmail       = errors.New("email is not valid")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrEmailInUse         = errors.New("email is already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("token is not valid")
)

type account struct {
	userID string
	email  string
	hash   []byte
}

type Memory struct {
	// notifyMu is held across a session change and its delivery so
	// listeners see changes in the order they were applied.
	notifyMu sync.Mutex

	mu        sync.Mutex
	accounts  map[string]account
	tokens    map[string]domain.Session
	current   *domain.Session
	listeners map[int]port.SessionListener
	nextID    int

	users  port.DocumentStore
	logger zerolog.Logger
	now    func() time.Time
}

type Option func(*Memory)

// WithUserDocuments records a "users" document for every new account and
// uses its id as the user id.
func WithUserDocuments(store port.DocumentStore) Option {
	return func(m *Memory) {
		m.users = store
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Memory) {
		m.logger = logger.With().Str("component", "identity").Logger()
	}
}

func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		accounts:  make(map[string]account),
		tokens:    make(map[string]domain.Session),
		listeners: make(map[int]port.SessionListener),
		logger:    zerolog.Nop(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

var (
	_ port.IdentityProvider = (*Memory)(nil)
	_ port.TokenVerifier    = (*Memory)(nil)
)

func (m *Memory) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.Session{}, err
	}
	if len(password) < minPasswordLength {
		return domain.Session{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Session{}, fmt.Errorf("bcrypt.GenerateFromPassword: %w", err)
	}

	m.mu.Lock()
	if _, ok := m.accounts[email]; ok {
		m.mu.Unlock()
		return domain.Session{}, ErrEmailInUse
	}
	// reserve the email before the slower document write
	m.accounts[email] = account{email: email, hash: hash}
	m.mu.Unlock()

	userID, err := m.createUserDocument(ctx, email)
	if err != nil {
		m.mu.Lock()
		delete(m.accounts, email)
		m.mu.Unlock()
		return domain.Session{}, err
	}

	var session domain.Session
	m.transition(func() (*domain.Session, bool) {
		m.accounts[email] = account{userID: userID, email: email, hash: hash}
		session = m.startSessionLocked(userID, email)
		return &session, true
	})

	m.logger.Info().Str("userId", userID).Msg("account created")

	return session, nil
}

func (m *Memory) SignIn(_ context.Context, email, password string) (domain.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.Session{}, ErrInvalidCredentials
	}

	m.mu.Lock()
	acc, ok := m.accounts[email]
	m.mu.Unlock()

	if !ok || acc.userID == "" {
		return domain.Session{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return domain.Session{}, ErrInvalidCredentials
	}

	var session domain.Session
	m.transition(func() (*domain.Session, bool) {
		session = m.startSessionLocked(acc.userID, acc.email)
		return &session, true
	})

	return session, nil
}

func (m *Memory) SignOut(_ context.Context) error {
	m.transition(func() (*domain.Session, bool) {
		if m.current == nil {
			return nil, false
		}
		delete(m.tokens, m.current.Token)
		m.current = nil
		return nil, true
	})

	return nil
}

func (m *Memory) CurrentSession() *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	session := *m.current
	return &session
}

// OnSessionChange calls listener right away with the current session and
// again after every sign in, sign up and sign out. Listeners must not call
// SignIn, SignUp or SignOut.
func (m *Memory) OnSessionChange(listener port.SessionListener) func() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = listener

	var current *domain.Session
	if m.current != nil {
		session := *m.current
		current = &session
	}
	m.mu.Unlock()

	listener(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

func (m *Memory) VerifyToken(_ context.Context, token string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.tokens[token]
	if !ok {
		return domain.Session{}, ErrInvalidToken
	}
	return session, nil
}

// startSessionLocked replaces the current session. mu must be held.
func (m *Memory) startSessionLocked(userID, email string) domain.Session {
	if m.current != nil {
		delete(m.tokens, m.current.Token)
	}

	session := domain.Session{
		UserID:     userID,
		Email:      email,
		Token:      uuid.NewString(),
		SignedInAt: m.now().UTC(),
	}

	m.tokens[session.Token] = session
	m.current = &session

	return session
}

// transition runs change under mu and, when it reports a change, delivers
// the returned session to every listener before the next transition starts.
func (m *Memory) transition(change func() (*domain.Session, bool)) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	session, changed := change()
	listeners := make([]port.SessionListener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	if !changed {
		return
	}

	for _, l := range listeners {
		if session == nil {
			l(nil)
			continue
		}
		copied := *session
		l(&copied)
	}
}

func (m *Memory) createUserDocument(ctx context.Context, email string) (string, error) {
	if m.users == nil {
		return uuid.NewString(), nil
	}

	id, err := m.users.Add(ctx, port.CollectionUsers, map[string]any{
		"email":     email,
		"role":      "customer",
		"createdAt": m.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("users.Add: %w", err)
	}

	return id, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}

	return email, nil
}
