// Package reservationcode issues the pickup codes handed to patrons when a reserved copy is ready.
package reservationcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// alphabet leaves out characters that are easily confused on a pickup slip (0/O, 1/I/L).
	alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	codeLength     = 6
	maxAttempts    = 10
	defaultKeyBase = "circulation:reservation-code:"
)

var (
	// ErrCodeSpaceExhausted is returned when no unused code was found within the attempt limit.
	ErrCodeSpaceExhausted = errors.New("no unused reservation code found")

	// ErrIssuerUnavailable wraps failures of the backing store.
	ErrIssuerUnavailable = errors.New("reservation code issuer unavailable")
)

// Issuer hands out reservation codes that are unique while they can still be collected.
type Issuer interface {
	Issue(ctx context.Context) (string, error)
}

// Releaser frees a code before its claim expires, so it can be issued again.
type Releaser interface {
	Release(ctx context.Context, code string) error
}

// RedisIssuer claims every code with SET NX, so concurrent processes never hand out the same code.
type RedisIssuer struct {
	client  redis.UniversalClient
	ttl     time.Duration
	keyBase string
}

// RedisOption configures a RedisIssuer.
type RedisOption func(*RedisIssuer)

// WithKeyPrefix replaces the Redis key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(i *RedisIssuer) {
		i.keyBase = prefix
	}
}

// NewRedisIssuer creates an issuer whose claims expire after ttl.
// ttl should cover the pickup window plus some slack.
func NewRedisIssuer(client redis.UniversalClient, ttl time.Duration, opts ...RedisOption) *RedisIssuer {
	issuer := &RedisIssuer{
		client:  client,
		ttl:     ttl,
		keyBase: defaultKeyBase,
	}

	for _, opt := range opts {
		opt(issuer)
	}

	return issuer
}

// Issue generates random codes until one can be claimed.
func (i *RedisIssuer) Issue(ctx context.Context) (string, error) {
	for range maxAttempts {
		code, err := generate()
		if err != nil {
			return "", err
		}

		claimed, err := i.client.SetNX(ctx, i.keyBase+code, time.Now().UTC().Format(time.RFC3339), i.ttl).Result()
		if err != nil {
			return "", errors.Join(ErrIssuerUnavailable, err)
		}

		if claimed {
			return code, nil
		}
	}

	return "", ErrCodeSpaceExhausted
}

// Release frees a code early, e.g. after the reservation was collected or when it was not used.
func (i *RedisIssuer) Release(ctx context.Context, code string) error {
	if err := i.client.Del(ctx, i.keyBase+code).Err(); err != nil {
		return errors.Join(ErrIssuerUnavailable, err)
	}

	return nil
}

// MemoryIssuer keeps claimed codes in process. Codes are never reclaimed.
type MemoryIssuer struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

func NewMemoryIssuer() *MemoryIssuer {
	return &MemoryIssuer{claimed: map[string]struct{}{}}
}

func (i *MemoryIssuer) Issue(_ context.Context) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for range maxAttempts {
		code, err := generate()
		if err != nil {
			return "", err
		}

		if _, taken := i.claimed[code]; !taken {
			i.claimed[code] = struct{}{}

			return code, nil
		}
	}

	return "", ErrCodeSpaceExhausted
}

func (i *MemoryIssuer) Release(_ context.Context, code string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.claimed, code)

	return nil
}

// Valid reports whether code has the shape of an issued code.
func Valid(code string) bool {
	if len(code) != codeLength {
		return false
	}

	for _, r := range code {
		found := false

		for _, a := range alphabet {
			if r == a {
				found = true

				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}

func generate() (string, error) {
	code := make([]byte, codeLength)
	limit := big.NewInt(int64(len(alphabet)))

	for pos := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate reservation code: %w", err)
		}

		code[pos] = alphabet[n.Int64()]
	}

	return string(code), nil
}
