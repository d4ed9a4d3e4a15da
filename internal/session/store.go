// Package session provides the per-call state that survives across
// stateless webhook turns, backed by a remote Redis store. Fields are
// exposed through typed accessors so the flow invariants live in one place.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kwchan/bank-ivr/internal/locale"
	"github.com/kwchan/bank-ivr/internal/models"
)

// Per-call field suffixes. Keys are scoped by call ID, so cross-call
// leakage is prevented as long as call IDs are unique and non-guessable —
// a carrier guarantee, not enforced here.
const (
	fieldLangPref   = "langpref"
	fieldAuthAcc    = "auth_acc"
	fieldErrCount   = "err_cnt"
	fieldCandidates = "acc_details"
)

// serviceStatusKey is global, not scoped to a call.
const serviceStatusKey = "call_centre_service_status"

// Call-centre availability values.
const (
	StatusInService    = "in_service"
	StatusOutOfService = "out_of_service"
)

// ErrNotFound is returned when a session field was never set or has expired.
var ErrNotFound = errors.New("session field not set")

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	// TTL applied to every per-call key; expired calls age out of the store.
	TTL time.Duration
}

// Store is the Redis-backed session store.
type Store struct {
	client *redis.Client
	log    *logrus.Logger
	ttl    time.Duration
}

// NewStore connects to Redis and verifies the connection.
func NewStore(cfg Config, log *logrus.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("session store connection failed: %w", err)
	}

	log.Infof("Connected to session store at %s", cfg.Addr)
	return &Store{client: client, log: log, ttl: cfg.TTL}, nil
}

func key(callID, field string) string {
	return callID + ":" + field
}

// Language returns the caller's stored language preference. A missing key
// or a store failure falls back to the default language rather than
// blocking the call.
func (s *Store) Language(ctx context.Context, callID string) locale.Language {
	val, err := s.client.Get(ctx, key(callID, fieldLangPref)).Result()
	if err == redis.Nil {
		return locale.Default
	}
	if err != nil {
		s.log.Warnf("Failed to read language for call %s: %v", callID, err)
		return locale.Default
	}
	l, ok := locale.Parse(val)
	if !ok {
		s.log.Warnf("Unexpected language value %q for call %s", val, callID)
		return locale.Default
	}
	return l
}

// SetLanguage persists the caller's language preference.
func (s *Store) SetLanguage(ctx context.Context, callID string, l locale.Language) error {
	if err := s.client.Set(ctx, key(callID, fieldLangPref), strconv.Itoa(int(l)), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store language: %w", err)
	}
	return nil
}

// SetAuthAccount stores the account pending PIN verification. Accepting a
// new account ID starts a fresh authentication attempt, so the retry
// counter goes back to zero in the same round trip.
func (s *Store) SetAuthAccount(ctx context.Context, callID string, acc *models.AuthAccount) error {
	data, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("failed to marshal auth account: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key(callID, fieldAuthAcc), data, s.ttl)
	pipe.Set(ctx, key(callID, fieldErrCount), "0", s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store auth account: %w", err)
	}
	return nil
}

// AuthAccount reads back the account pending or past PIN verification.
func (s *Store) AuthAccount(ctx context.Context, callID string) (*models.AuthAccount, error) {
	val, err := s.client.Get(ctx, key(callID, fieldAuthAcc)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read auth account: %w", err)
	}
	var acc models.AuthAccount
	if err := json.Unmarshal(val, &acc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auth account: %w", err)
	}
	return &acc, nil
}

// ErrorCount reads the PIN retry counter. A missing key reads as zero.
func (s *Store) ErrorCount(ctx context.Context, callID string) (int, error) {
	val, err := s.client.Get(ctx, key(callID, fieldErrCount)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read error count: %w", err)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("unexpected error count value %q: %w", val, err)
	}
	return n, nil
}

// IncrementErrorCount bumps the PIN retry counter atomically in the store
// itself, so a duplicate webhook delivery racing a legitimate retry cannot
// lose an update.
func (s *Store) IncrementErrorCount(ctx context.Context, callID string) (int, error) {
	k := key(callID, fieldErrCount)
	n, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment error count: %w", err)
	}
	if s.ttl > 0 {
		s.client.Expire(ctx, k, s.ttl)
	}
	return int(n), nil
}

// ResetErrorCount zeroes the PIN retry counter after a successful match.
func (s *Store) ResetErrorCount(ctx context.Context, callID string) error {
	if err := s.client.Set(ctx, key(callID, fieldErrCount), "0", s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to reset error count: %w", err)
	}
	return nil
}

// SetCandidates stores the transfer partitions for the selection screen.
func (s *Store) SetCandidates(ctx context.Context, callID string, c *models.AccountCandidates) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal account candidates: %w", err)
	}
	if err := s.client.Set(ctx, key(callID, fieldCandidates), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store account candidates: %w", err)
	}
	return nil
}

// Candidates reads back the stored transfer partitions.
func (s *Store) Candidates(ctx context.Context, callID string) (*models.AccountCandidates, error) {
	val, err := s.client.Get(ctx, key(callID, fieldCandidates)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read account candidates: %w", err)
	}
	var c models.AccountCandidates
	if err := json.Unmarshal(val, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account candidates: %w", err)
	}
	return &c, nil
}

// ServiceStatus reports the call-centre availability flag. A missing key or
// a store failure reads as closed, routing callers to voicemail instead of
// an unstaffed queue.
func (s *Store) ServiceStatus(ctx context.Context) string {
	val, err := s.client.Get(ctx, serviceStatusKey).Result()
	if err == redis.Nil {
		return StatusOutOfService
	}
	if err != nil {
		s.log.Warnf("Failed to read service status: %v", err)
		return StatusOutOfService
	}
	return val
}

// SetServiceStatus writes the call-centre availability flag. The flag is
// global and does not expire.
func (s *Store) SetServiceStatus(ctx context.Context, status string) error {
	if err := s.client.Set(ctx, serviceStatusKey, status, 0).Err(); err != nil {
		return fmt.Errorf("failed to store service status: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.client.Close()
}
