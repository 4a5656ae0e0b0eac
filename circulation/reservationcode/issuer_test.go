package reservationcode_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/reservationcode"
)

func newRedisIssuer(t *testing.T) (*reservationcode.RedisIssuer, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return reservationcode.NewRedisIssuer(client, 96*time.Hour, reservationcode.WithKeyPrefix("test:code:")), server
}

var (
	_ reservationcode.Releaser = (*reservationcode.RedisIssuer)(nil)
	_ reservationcode.Releaser = (*reservationcode.MemoryIssuer)(nil)
)

func Test_RedisIssuer_Issue_ClaimsUniqueCodes(t *testing.T) {
	// arrange
	ctx := context.Background()
	issuer, server := newRedisIssuer(t)
	seen := map[string]bool{}

	// act
	for range 50 {
		code, err := issuer.Issue(ctx)
		require.NoError(t, err)

		// assert
		assert.True(t, reservationcode.Valid(code), code)
		assert.False(t, seen[code], "code issued twice: %s", code)
		seen[code] = true
		assert.True(t, server.Exists("test:code:"+code))
	}
}

func Test_RedisIssuer_Issue_ClaimExpiresAfterTTL(t *testing.T) {
	// arrange
	ctx := context.Background()
	issuer, server := newRedisIssuer(t)

	code, err := issuer.Issue(ctx)
	require.NoError(t, err)

	// act
	server.FastForward(97 * time.Hour)

	// assert
	assert.False(t, server.Exists("test:code:"+code))
}

func Test_RedisIssuer_Release_FreesCode(t *testing.T) {
	// arrange
	ctx := context.Background()
	issuer, server := newRedisIssuer(t)

	code, err := issuer.Issue(ctx)
	require.NoError(t, err)

	// act
	err = issuer.Release(ctx, code)

	// assert
	require.NoError(t, err)
	assert.False(t, server.Exists("test:code:"+code))
}

func Test_RedisIssuer_Issue_Fails_WhenRedisIsDown(t *testing.T) {
	// arrange
	issuer, server := newRedisIssuer(t)
	server.Close()

	// act
	_, err := issuer.Issue(context.Background())

	// assert
	assert.ErrorIs(t, err, reservationcode.ErrIssuerUnavailable)
}

func Test_MemoryIssuer_Issue_ReturnsValidCodes(t *testing.T) {
	// arrange
	issuer := reservationcode.NewMemoryIssuer()

	// act
	first, err1 := issuer.Issue(context.Background())
	second, err2 := issuer.Issue(context.Background())

	// assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.True(t, reservationcode.Valid(first))
	assert.NotEqual(t, first, second)
}

func Test_Valid(t *testing.T) {
	assert.True(t, reservationcode.Valid("K7Q2XW"))
	assert.False(t, reservationcode.Valid("K7Q2X"))
	assert.False(t, reservationcode.Valid("K7Q2X0"))
	assert.False(t, reservationcode.Valid("k7q2xw"))
}
