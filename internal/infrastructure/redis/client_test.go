package redis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/wildlander/launcher/configs"
	"github.com/wildlander/launcher/internal/infrastructure/redis"
)

func TestNewRedisClient_DisabledWithoutAddr(t *testing.T) {
	client, err := redis.NewRedisClient(&config.RedisConfig{})
	require.ErrorIs(t, err, redis.ErrDisabled)
	assert.Nil(t, client)
}
