package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Addr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Config{}.Addr())
	assert.Equal(t, "cache:6379", Config{Host: "cache"}.Addr())
	assert.Equal(t, "cache:6380", Config{Host: "cache", Port: "6380"}.Addr())
}

func TestNewRedisClient(t *testing.T) {
	t.Parallel()

	t.Run("not configured", func(t *testing.T) {
		_, err := NewRedisClient(context.Background(), Config{})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("success", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb, err := NewRedisClient(context.Background(), Config{Host: mr.Host(), Port: mr.Port()})
		require.NoError(t, err)
		assert.NoError(t, rdb.Close())
	})

	t.Run("unreachable", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		host, port := mr.Host(), mr.Port()
		mr.Close()

		_, err = NewRedisClient(context.Background(), Config{Host: host, Port: port})
		assert.Error(t, err)
	})
}
