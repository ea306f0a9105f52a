package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"retailpos/internal/cart"
	"retailpos/internal/dto"
)

var (
	ErrSessionNotFound  = errors.New("cart session not found")
	ErrHeldCartNotFound = errors.New("held cart not found or expired")
)

const heldCartKeyPrefix = "held:cart:"

// SessionService owns the live carts. Each POS terminal opens a session and
// every cart mutation goes through Do, which serializes access per session.
// Held carts are parked in Redis with a TTL so a terminal restart (or another
// terminal) can pick them up.
type SessionService interface {
	Open() uuid.UUID
	Close(id uuid.UUID)
	// Do runs fn with the session's cart under its lock and returns the
	// post-mutation snapshot. fn returning an error aborts with no snapshot.
	Do(id uuid.UUID, fn func(c *cart.Cart) error) (*cart.Snapshot, error)

	Hold(ctx context.Context, id uuid.UUID) (string, error)
	Resume(ctx context.Context, sessionID uuid.UUID, holdID string) (*cart.Snapshot, error)
	ListHeld(ctx context.Context) ([]dto.HeldCartSummary, error)
}

type session struct {
	mu   sync.Mutex
	cart *cart.Cart
}

type sessionService struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session

	rdb            *redis.Client
	ttl            time.Duration
	defaultTaxRate decimal.Decimal
}

func NewSessionService(rdb *redis.Client, heldTTL time.Duration, defaultTaxRate decimal.Decimal) SessionService {
	return &sessionService{
		sessions:       make(map[uuid.UUID]*session),
		rdb:            rdb,
		ttl:            heldTTL,
		defaultTaxRate: defaultTaxRate,
	}
}

func (s *sessionService) Open() uuid.UUID {
	id := uuid.New()
	c := cart.New()
	c.SetTaxRate(s.defaultTaxRate)
	s.mu.Lock()
	s.sessions[id] = &session{cart: c}
	s.mu.Unlock()
	log.Debug().Str("session_id", id.String()).Msg("cart session opened")
	return id
}

func (s *sessionService) Close(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *sessionService) get(id uuid.UUID) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *sessionService) Do(id uuid.UUID, fn func(c *cart.Cart) error) (*cart.Snapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := fn(sess.cart); err != nil {
		return nil, err
	}
	snap := sess.cart.Snapshot()
	return &snap, nil
}

// ── Hold / resume ─────────────────────────────────────────────────────────────
// A held cart is the full snapshot JSON parked under its own Redis key with a
// TTL. Holding clears the live cart so the terminal can start the next sale.

type heldCartEnvelope struct {
	HeldAt   time.Time     `json:"held_at"`
	Snapshot cart.Snapshot `json:"snapshot"`
}

func (s *sessionService) Hold(ctx context.Context, id uuid.UUID) (string, error) {
	sess, err := s.get(id)
	if err != nil {
		return "", err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.cart.Len() == 0 {
		return "", errors.New("cannot hold an empty cart")
	}

	env := heldCartEnvelope{HeldAt: time.Now().UTC(), Snapshot: sess.cart.Snapshot()}
	data, err := json.Marshal(env)
	if err != nil {
		return "", err
	}

	holdID := uuid.NewString()
	if err := s.rdb.Set(ctx, heldCartKeyPrefix+holdID, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("parking cart in redis: %w", err)
	}

	sess.cart.Clear()
	log.Info().Str("hold_id", holdID).Int("items", len(env.Snapshot.Items)).Msg("cart held")
	return holdID, nil
}

func (s *sessionService) Resume(ctx context.Context, sessionID uuid.UUID, holdID string) (*cart.Snapshot, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	key := heldCartKeyPrefix + holdID
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrHeldCartNotFound
		}
		return nil, err
	}

	var env heldCartEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("corrupt held cart %s: %w", holdID, err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.cart.Len() > 0 {
		return nil, errors.New("current cart is not empty, hold or clear it first")
	}

	sess.cart.Restore(env.Snapshot)
	// Delete after restoring so a crash between the two leaves the hold intact.
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Str("hold_id", holdID).Msg("failed to delete resumed hold")
	}

	snap := sess.cart.Snapshot()
	return &snap, nil
}

func (s *sessionService) ListHeld(ctx context.Context) ([]dto.HeldCartSummary, error) {
	keys, err := s.rdb.Keys(ctx, heldCartKeyPrefix+"*").Result()
	if err != nil {
		return nil, err
	}

	out := make([]dto.HeldCartSummary, 0, len(keys))
	for _, key := range keys {
		data, err := s.rdb.Get(ctx, key).Bytes()
		if err != nil {
			continue // expired between KEYS and GET
		}
		var env heldCartEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Warn().Str("key", key).Msg("skipping corrupt held cart")
			continue
		}
		customer := "walk-in"
		if env.Snapshot.Customer != nil {
			customer = env.Snapshot.Customer.Name
		}
		out = append(out, dto.HeldCartSummary{
			HoldID:    key[len(heldCartKeyPrefix):],
			ItemCount: len(env.Snapshot.Items),
			Customer:  customer,
			Total:     env.Snapshot.Totals.Total,
			HeldAt:    env.HeldAt.Format(time.RFC3339),
		})
	}
	return out, nil
}
