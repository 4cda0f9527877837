package redis

import (
	"context"
	"net"
	"strconv"
	"testing"

	"dao-governance/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisAddr(t *testing.T) {
	cfg := config.RedisConfig{
		Host: "redis.dao.internal",
		Port: 6380,
	}
	assert.Equal(t, "redis.dao.internal:6380", cfg.Addr())
}

func TestNewClient_ConnectsAndPings(t *testing.T) {
	mr := miniredis.RunT(t)

	host, portStr, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	client, err := NewClient(context.Background(), config.RedisConfig{
		Host: host,
		Port: port,
	}, zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewClient_UnreachableServer(t *testing.T) {
	// Port 1 on loopback refuses immediately.
	_, err := NewClient(context.Background(), config.RedisConfig{
		Host: "127.0.0.1",
		Port: 1,
	}, zerolog.Nop())
	assert.Error(t, err)
}
