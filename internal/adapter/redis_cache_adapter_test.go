package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizform/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCacheAdapter(db)
	ctx := context.Background()

	mock.ExpectGet("quizform:pairing:qrtoken:abc").SetVal("pending")

	val, err := cache.Get(ctx, "quizform:pairing:qrtoken:abc")
	require.NoError(t, err)
	assert.Equal(t, "pending", val)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCacheAdapter(db)
	ctx := context.Background()

	mock.ExpectGet("missing").RedisNil()

	_, err := cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCacheAdapter(db)
	ctx := context.Background()

	mock.ExpectSet("key", "value", 5*time.Minute).SetVal("OK")

	require.NoError(t, cache.Set(ctx, "key", "value", 5*time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDel(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCacheAdapter(db)
	ctx := context.Background()

	mock.ExpectGetDel("token").SetVal(`{"id":"user-1"}`)

	val, err := cache.GetDel(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"user-1"}`, val)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDelMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCacheAdapter(db)
	ctx := context.Background()

	mock.ExpectGetDel("consumed").RedisNil()

	_, err := cache.GetDel(ctx, "consumed")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPropagatesOtherErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCacheAdapter(db)
	ctx := context.Background()

	mock.ExpectGet("key").SetErr(errors.New("connection refused"))

	_, err := cache.Get(ctx, "key")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisCacheAdapter(db)
	ctx := context.Background()

	mock.ExpectDel("key").SetVal(1)

	require.NoError(t, cache.Delete(ctx, "key"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
