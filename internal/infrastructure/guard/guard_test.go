package guard

import (
	"bytes"
	"context"
	"errors"
	"isp-billing/internal/pkg/apperrors"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRedis struct {
	mock.Mock
}

func (m *mockRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.BoolCmd)
}

func (m *mockRedis) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	ret := m.Called(ctx, script, keys, args)
	return ret.Get(0).(*redis.Cmd)
}

func (m *mockRedis) EvalSha(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	ret := m.Called(ctx, sha1, keys, args)
	return ret.Get(0).(*redis.Cmd)
}

func (m *mockRedis) EvalRO(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	ret := m.Called(ctx, script, keys, args)
	return ret.Get(0).(*redis.Cmd)
}

func (m *mockRedis) EvalShaRO(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	ret := m.Called(ctx, sha1, keys, args)
	return ret.Get(0).(*redis.Cmd)
}

func (m *mockRedis) ScriptExists(ctx context.Context, hashes ...string) *redis.BoolSliceCmd {
	ret := m.Called(ctx, hashes)
	return ret.Get(0).(*redis.BoolSliceCmd)
}

func (m *mockRedis) ScriptLoad(ctx context.Context, script string) *redis.StringCmd {
	ret := m.Called(ctx, script)
	return ret.Get(0).(*redis.StringCmd)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestMemoryGuard(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	release, err := g.Acquire(ctx, "c1:2025-03")
	require.NoError(t, err)

	_, err = g.Acquire(ctx, "c1:2025-03")
	assert.ErrorIs(t, err, apperrors.ErrProcessing)

	other, err := g.Acquire(ctx, "c2:2025-03")
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := g.Acquire(ctx, "c1:2025-03")
	require.NoError(t, err)
	again()
}

func TestRedisGuardAcquireAndRelease(t *testing.T) {
	client := new(mockRedis)
	g := newRedisGuard(client, 10*time.Second, discardLogger())
	ctx := context.Background()

	var token string
	client.On("SetNX", ctx, "processing:c1:2025-03", mock.AnythingOfType("string"), 10*time.Second).
		Run(func(args mock.Arguments) { token = args.String(2) }).
		Return(redis.NewBoolResult(true, nil)).Once()

	release, err := g.Acquire(ctx, "c1:2025-03")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	client.On("EvalSha", mock.Anything, releaseScript.Hash(), []string{"processing:c1:2025-03"}, []interface{}{token}).
		Return(redis.NewCmdResult(int64(1), nil)).Once()

	release()
	client.AssertExpectations(t)
}

func TestRedisGuardAlreadyHeld(t *testing.T) {
	client := new(mockRedis)
	g := newRedisGuard(client, time.Second, discardLogger())
	ctx := context.Background()

	client.On("SetNX", ctx, "processing:c1:2025-03", mock.Anything, time.Second).
		Return(redis.NewBoolResult(false, nil)).Once()

	release, err := g.Acquire(ctx, "c1:2025-03")
	assert.Nil(t, release)
	assert.ErrorIs(t, err, apperrors.ErrProcessing)
	client.AssertExpectations(t)
}

func TestRedisGuardFailsOpenOnRedisError(t *testing.T) {
	client := new(mockRedis)
	g := newRedisGuard(client, time.Second, discardLogger())
	ctx := context.Background()

	client.On("SetNX", ctx, "processing:c1:2025-03", mock.Anything, time.Second).
		Return(redis.NewBoolResult(false, errors.New("connection refused"))).Once()

	release, err := g.Acquire(ctx, "c1:2025-03")
	require.NoError(t, err)
	require.NotNil(t, release)
	release()

	client.AssertNotCalled(t, "EvalSha", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRedisGuardReleaseLeavesTakenOverMarker(t *testing.T) {
	client := new(mockRedis)
	g := newRedisGuard(client, time.Second, discardLogger())
	ctx := context.Background()

	client.On("SetNX", ctx, "processing:c1:2025-03", mock.Anything, time.Second).
		Return(redis.NewBoolResult(true, nil)).Once()
	// The script compares and deletes in one round trip; 0 means another holder owns the key now.
	client.On("EvalSha", mock.Anything, releaseScript.Hash(), []string{"processing:c1:2025-03"}, mock.Anything).
		Return(redis.NewCmdResult(int64(0), nil)).Once()

	release, err := g.Acquire(ctx, "c1:2025-03")
	require.NoError(t, err)
	release()

	client.AssertNotCalled(t, "Eval", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	client.AssertExpectations(t)
}

func TestRedisGuardReleaseError(t *testing.T) {
	client := new(mockRedis)
	g := newRedisGuard(client, time.Second, discardLogger())
	ctx := context.Background()

	client.On("SetNX", ctx, "processing:c1:2025-03", mock.Anything, time.Second).
		Return(redis.NewBoolResult(true, nil)).Once()
	client.On("EvalSha", mock.Anything, releaseScript.Hash(), []string{"processing:c1:2025-03"}, mock.Anything).
		Return(redis.NewCmdResult(nil, errors.New("i/o timeout"))).Once()

	release, err := g.Acquire(ctx, "c1:2025-03")
	require.NoError(t, err)
	assert.NotPanics(t, release)
	client.AssertExpectations(t)
}

func TestNewRedisGuardDefaultsTTL(t *testing.T) {
	g := newRedisGuard(new(mockRedis), 0, discardLogger())
	assert.Equal(t, 30*time.Second, g.ttl)
}
