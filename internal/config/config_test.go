package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 関係する環境変数をまとめて空にしてから必要な分だけ入れる
func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	keys := []string{
		"PORT", "DATABASE_URL", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_SSLMODE", "JWT_SECRET", "ACCESS_TOKEN_TTL",
		"GO_ENV", "FE_URL", "LOG_LEVEL", "APP_TIMEZONE", "ORDER_INITIAL_STATUS",
		"SCHEDULER_INTERVAL", "AMQP_URL", "ADMIN_EMAIL", "ADMIN_PASSWORD",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":        "secret",
		"POSTGRES_PASSWORD": "pw",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "confirmed", cfg.OrderInitialStatus)
	assert.Equal(t, time.Minute, cfg.SchedulerInterval)
	assert.Equal(t, 12*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, "host=localhost port=5432 user=postgres password=pw dbname=canteen sslmode=disable", cfg.DSN())
	assert.False(t, cfg.IsProd())
}

func TestLoad_DatabaseURLWins(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":   "secret",
		"DATABASE_URL": "postgres://u:p@db:5432/canteen",
		"PORT":         ":9000",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/canteen", cfg.DSN())
	assert.Equal(t, ":9000", cfg.Addr())
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{"POSTGRES_PASSWORD": "pw"}, "JWT_SECRET"},
		{"missing db", map[string]string{"JWT_SECRET": "s"}, "DATABASE_URL"},
		{"bad port", map[string]string{"JWT_SECRET": "s", "POSTGRES_PASSWORD": "pw", "POSTGRES_PORT": "abc"}, "POSTGRES_PORT"},
		{"bad status", map[string]string{"JWT_SECRET": "s", "POSTGRES_PASSWORD": "pw", "ORDER_INITIAL_STATUS": "ready"}, "ORDER_INITIAL_STATUS"},
		{"bad tz", map[string]string{"JWT_SECRET": "s", "POSTGRES_PASSWORD": "pw", "APP_TIMEZONE": "Mars/Base"}, "APP_TIMEZONE"},
		{"bad interval", map[string]string{"JWT_SECRET": "s", "POSTGRES_PASSWORD": "pw", "SCHEDULER_INTERVAL": "soon"}, "SCHEDULER_INTERVAL"},
		{"admin half set", map[string]string{"JWT_SECRET": "s", "POSTGRES_PASSWORD": "pw", "ADMIN_EMAIL": "a@b.c"}, "ADMIN_PASSWORD"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setEnv(t, tc.env)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_PendingInitialStatus(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":           "secret",
		"POSTGRES_PASSWORD":    "pw",
		"ORDER_INITIAL_STATUS": "PENDING",
		"APP_TIMEZONE":         "Asia/Kolkata",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pending", cfg.OrderInitialStatus)
	assert.Equal(t, "Asia/Kolkata", cfg.Location.String())
}
