package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"pixelfood/internal/dto"
	"pixelfood/internal/infra"
	"pixelfood/internal/model"
	"pixelfood/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// Estado is the resolution state of the terminal session.
type Estado int

const (
	// EstadoPendiente: storage not read yet. Nothing may be decided.
	EstadoPendiente Estado = iota
	EstadoAnonimo
	EstadoAutenticado
)

func (e Estado) String() string {
	switch e {
	case EstadoPendiente:
		return "pendiente"
	case EstadoAnonimo:
		return "anonimo"
	case EstadoAutenticado:
		return "autenticado"
	default:
		return "desconocido"
	}
}

func (e Estado) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

var ErrLoginInvalido = errors.New("respuesta de login invalida")

const msgErrorLogin = "Error al iniciar sesion"

// AuthSession is the single session of the terminal: who is signed in and
// with which access token. It is created once per process, resolved from
// durable storage at startup and torn down by Logout.
//
// Login and Logout are not coordinated against each other; callers issue
// them one at a time.
type AuthSession struct {
	terminalID string
	store      repository.SessionStore
	client     *infra.BackendClient
	now        func() time.Time

	mu       sync.RWMutex
	estado   Estado
	token    string
	usuario  *model.Usuario
	onLogout []func()
}

// NewAuthSession builds a pending session and registers it as the token
// source of client.
func NewAuthSession(terminalID string, store repository.SessionStore, client *infra.BackendClient) *AuthSession {
	s := &AuthSession{
		terminalID: terminalID,
		store:      store,
		client:     client,
		now:        time.Now,
	}
	client.UseTokenSource(s)
	return s
}

// OnLogout registers fn to run whenever the signed-in user goes away.
func (s *AuthSession) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

func (s *AuthSession) Estado() Estado {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.estado
}

// Usuario returns a copy of the signed-in user, or nil.
func (s *AuthSession) Usuario() *model.Usuario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.usuario == nil {
		return nil
	}
	u := *s.usuario
	return &u
}

// Token implements infra.TokenSource.
func (s *AuthSession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Resolve reads the stored session. It always leaves the session resolved:
// on any problem the terminal starts anonymous.
func (s *AuthSession) Resolve(ctx context.Context) error {
	saved, err := s.store.Load(ctx, s.terminalID)
	if errors.Is(err, repository.ErrSesionNoEncontrada) {
		s.setAnonimo()
		return nil
	}
	if err != nil {
		s.setAnonimo()
		return fmt.Errorf("resolve session: %w", err)
	}

	var u model.Usuario
	if err := json.Unmarshal(saved.Usuario, &u); err != nil || !tokenUsable(saved.Token) {
		log.Warn().Str("terminal", s.terminalID).Msg("stored session unreadable, discarding")
		s.discard(ctx)
		return nil
	}
	if s.tokenExpirado(saved.Token) {
		log.Info().Str("terminal", s.terminalID).Msg("stored session expired")
		s.discard(ctx)
		return nil
	}

	s.mu.Lock()
	s.estado = EstadoAutenticado
	s.token = saved.Token
	s.usuario = &u
	s.mu.Unlock()

	log.Info().Str("terminal", s.terminalID).Str("usuario", u.ID).Str("rol", string(u.Rol)).Msg("session resolved")
	return nil
}

// Login exchanges the credential for a token and profile, persists them and
// only then updates the in-memory session. A failure leaves the previous
// state untouched.
func (s *AuthSession) Login(ctx context.Context, req dto.LoginRequest) (*model.Usuario, error) {
	var resp dto.LoginResponse
	if err := s.client.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, operacionError(err, msgErrorLogin)
	}
	if !tokenUsable(resp.AccessToken) {
		return nil, ErrLoginInvalido
	}
	if resp.Usuario.Permisos == nil {
		resp.Usuario.Permisos = model.Permisos{}
	}

	raw, err := json.Marshal(resp.Usuario)
	if err != nil {
		return nil, fmt.Errorf("encode usuario: %w", err)
	}
	if err := s.store.Save(ctx, &model.SesionGuardada{
		TerminalID: s.terminalID,
		Token:      resp.AccessToken,
		Usuario:    raw,
	}); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	prev := s.usuario
	s.estado = EstadoAutenticado
	s.token = resp.AccessToken
	u := resp.Usuario
	s.usuario = &u
	hooks := s.hooks()
	s.mu.Unlock()

	// A different user must not inherit the previous user's cart.
	if prev != nil && prev.ID != u.ID {
		run(hooks)
	}

	log.Info().Str("terminal", s.terminalID).Str("usuario", u.ID).Str("rol", string(u.Rol)).Msg("login")
	cp := u
	return &cp, nil
}

// Logout clears durable storage and memory. Memory is cleared even when the
// storage call fails.
func (s *AuthSession) Logout(ctx context.Context) error {
	err := s.store.Clear(ctx, s.terminalID)

	s.mu.Lock()
	hadUser := s.usuario != nil
	s.estado = EstadoAnonimo
	s.token = ""
	s.usuario = nil
	hooks := s.hooks()
	s.mu.Unlock()

	if hadUser {
		run(hooks)
	}
	if err != nil {
		log.Error().Err(err).Str("terminal", s.terminalID).Msg("logout: clear stored session")
		return fmt.Errorf("clear session: %w", err)
	}
	log.Info().Str("terminal", s.terminalID).Msg("logout")
	return nil
}

func (s *AuthSession) setAnonimo() {
	s.mu.Lock()
	s.estado = EstadoAnonimo
	s.token = ""
	s.usuario = nil
	s.mu.Unlock()
}

func (s *AuthSession) discard(ctx context.Context) {
	if err := s.store.Clear(ctx, s.terminalID); err != nil {
		log.Warn().Err(err).Msg("clear stale session")
	}
	s.setAnonimo()
}

// hooks must run under mu.
func (s *AuthSession) hooks() []func() {
	return append([]func(){}, s.onLogout...)
}

func run(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

func tokenUsable(tok string) bool {
	return tok != "" && tok != "undefined"
}

// tokenExpirado reads the exp claim without verifying the signature: the
// backend owns the key. Tokens that are not JWTs are left to the backend.
func (s *AuthSession) tokenExpirado(tok string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(s.now())
}
