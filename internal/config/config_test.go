package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = strings.Repeat("ab", 32)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENCRYPTION_KEY", testKey)
	t.Setenv("BLIND_INDEX_KEY", testKey)
	for _, k := range []string{"APP_ENV", "JWT_TTL_HOURS", "MAIL_PORT", "CORS_ALLOWED_ORIGINS", "DB_DRIVER"} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("MAIL_SERVER", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Len(t, cfg.EncryptionKey, 32)
	assert.False(t, cfg.Mail.Enabled())
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.NotEmpty(t, cfg.AllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("MAIL_SERVER", "smtp.example.com")
	t.Setenv("MAIL_USERNAME", "bot@example.com")
	t.Setenv("MAIL_FROM", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.Mail.Enabled())
	assert.Equal(t, "bot@example.com", cfg.Mail.From)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "missing jwt secret", key: "JWT_SECRET", value: ""},
		{name: "unknown driver", key: "DB_DRIVER", value: "mysql"},
		{name: "short encryption key", key: "ENCRYPTION_KEY", value: "abcd"},
		{name: "non hex blind index key", key: "BLIND_INDEX_KEY", value: strings.Repeat("zz", 32)},
		{name: "bad ttl", key: "JWT_TTL_HOURS", value: "soon"},
		{name: "zero ttl", key: "JWT_TTL_HOURS", value: "0"},
		{name: "bad mail port", key: "MAIL_PORT", value: "smtp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
