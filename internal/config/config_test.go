package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.JWTExpirationMinutes)
	assert.Equal(t, 168, cfg.JWTRefreshExpirationHours)
	assert.Equal(t, "testrequest:status", cfg.Redis.StatusStream)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "root:@tcp(localhost:3306)/covid_testing?charset=utf8mb4&parseTime=True&loc=Local", cfg.Database.DSN)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USERNAME", "lab")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Contains(t, cfg.Database.DSN, "lab:secret@tcp(db:3306)")
}

func TestLoadConfig_InvalidNumbers(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"redis db", "REDIS_DB"},
		{"jwt expiration", "JWT_EXPIRATION_MINUTES"},
		{"refresh expiration", "JWT_REFRESH_EXPIRATION_HOURS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, "not-a-number")

			_, err := LoadConfig()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
