package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRevokeAndIsRevoked(t *testing.T) {
	r := initTestRepo(t)
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "some.token.value")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "some.token.value", time.Now().Add(time.Hour).Unix()))

	revoked, err = r.IsRevoked(ctx, "some.token.value")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = r.IsRevoked(ctx, "another.token.value")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRevokeIsIdempotent(t *testing.T) {
	r := initTestRepo(t)
	ctx := context.Background()

	exp := time.Now().Add(time.Hour).Unix()
	require.NoError(t, r.Revoke(ctx, "some.token.value", exp))
	require.NoError(t, r.Revoke(ctx, "some.token.value", exp))

	revoked, err := r.IsRevoked(ctx, "some.token.value")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestPruneExpired(t *testing.T) {
	r := initTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.Revoke(ctx, "dead.token", now.Add(-time.Hour).Unix()))
	require.NoError(t, r.Revoke(ctx, "live.token", now.Add(time.Hour).Unix()))
	require.NoError(t, r.Revoke(ctx, "unknown.expiry.token", 0))

	pruned, err := r.PruneExpired(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), pruned)

	revoked, err := r.IsRevoked(ctx, "dead.token")
	require.NoError(t, err)
	require.False(t, revoked)

	for _, token := range []string{"live.token", "unknown.expiry.token"} {
		revoked, err := r.IsRevoked(ctx, token)
		require.NoError(t, err)
		require.True(t, revoked)
	}
}
