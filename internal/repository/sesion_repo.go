package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"pixelfood/internal/model"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSesionNoEncontrada is returned by Load when the terminal has no stored
// session.
var ErrSesionNoEncontrada = errors.New("sesion no encontrada")

// SessionStore is the durable storage of the terminal session, keyed by
// terminal id. Save replaces whatever was stored before.
type SessionStore interface {
	Load(ctx context.Context, terminalID string) (*model.SesionGuardada, error)
	Save(ctx context.Context, s *model.SesionGuardada) error
	Clear(ctx context.Context, terminalID string) error
	Ping(ctx context.Context) error
}

// ── Memory ───────────────────────────────────────────────────────────────────

type memorySessionStore struct {
	mu       sync.RWMutex
	sesiones map[string]model.SesionGuardada
}

// NewMemorySessionStore keeps sessions in process memory. Used in development
// and tests; a restart loses the session.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sesiones: make(map[string]model.SesionGuardada)}
}

func (r *memorySessionStore) Load(_ context.Context, terminalID string) (*model.SesionGuardada, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sesiones[terminalID]
	if !ok {
		return nil, ErrSesionNoEncontrada
	}
	s.Usuario = append([]byte(nil), s.Usuario...)
	return &s, nil
}

func (r *memorySessionStore) Save(_ context.Context, s *model.SesionGuardada) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.Usuario = append([]byte(nil), s.Usuario...)
	now := time.Now()
	if prev, ok := r.sesiones[s.TerminalID]; ok {
		cp.CreatedAt = prev.CreatedAt
	} else {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	r.sesiones[s.TerminalID] = cp
	return nil
}

func (r *memorySessionStore) Clear(_ context.Context, terminalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sesiones, terminalID)
	return nil
}

func (r *memorySessionStore) Ping(context.Context) error { return nil }

// ── Redis ────────────────────────────────────────────────────────────────────

type redisSessionStore struct{ rdb *redis.Client }

// NewRedisSessionStore stores the session as JSON under sesion:{terminal_id}.
func NewRedisSessionStore(rdb *redis.Client) SessionStore {
	return &redisSessionStore{rdb: rdb}
}

func sesionKey(terminalID string) string { return "sesion:" + terminalID }

func (r *redisSessionStore) Load(ctx context.Context, terminalID string) (*model.SesionGuardada, error) {
	raw, err := r.rdb.Get(ctx, sesionKey(terminalID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSesionNoEncontrada
	}
	if err != nil {
		return nil, fmt.Errorf("redis get sesion: %w", err)
	}
	var s model.SesionGuardada
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode sesion: %w", err)
	}
	return &s, nil
}

func (r *redisSessionStore) Save(ctx context.Context, s *model.SesionGuardada) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode sesion: %w", err)
	}
	// No TTL: the session lives until logout or until its token expires.
	return r.rdb.Set(ctx, sesionKey(s.TerminalID), data, 0).Err()
}

func (r *redisSessionStore) Clear(ctx context.Context, terminalID string) error {
	return r.rdb.Del(ctx, sesionKey(terminalID)).Err()
}

func (r *redisSessionStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// ── Postgres (GORM) ──────────────────────────────────────────────────────────

type gormSessionStore struct{ db *gorm.DB }

// NewGormSessionStore stores the session in the sesiones_terminal table.
func NewGormSessionStore(db *gorm.DB) SessionStore { return &gormSessionStore{db: db} }

func (r *gormSessionStore) Load(ctx context.Context, terminalID string) (*model.SesionGuardada, error) {
	var s model.SesionGuardada
	err := r.db.WithContext(ctx).Where("terminal_id = ?", terminalID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSesionNoEncontrada
	}
	return &s, err
}

func (r *gormSessionStore) Save(ctx context.Context, s *model.SesionGuardada) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "terminal_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "usuario", "updated_at"}),
	}).Create(s).Error
}

func (r *gormSessionStore) Clear(ctx context.Context, terminalID string) error {
	return r.db.WithContext(ctx).Where("terminal_id = ?", terminalID).Delete(&model.SesionGuardada{}).Error
}

func (r *gormSessionStore) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
