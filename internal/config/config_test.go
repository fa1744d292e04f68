package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/tafel/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) Option {
	return WithLookupEnv(func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	})
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", WithEnvFile(""), env(nil))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def, *cfg)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "smtp.web.de", cfg.Mail.Host)
	assert.Equal(t, 465, cfg.Mail.Port)
	assert.True(t, cfg.Mail.AttachCalendar)
	assert.False(t, cfg.Mail.Enabled())
}

func TestLoad_FileThenEnvFileThenEnvironment(t *testing.T) {
	path := testutils.WriteFile(t, "tafel.yaml", `
server:
  addr: "127.0.0.1:9000"
  trust_proxy: true
session:
  backend: redis
  ttl: 45m
  redis:
    addr: "redis:6379"
mail:
  sender: bot@restaurant.de
  timeout: 5s
log:
  level: debug
`)
	dotenv := testutils.WriteFile(t, ".env", "SENDER_PASSWORD=geheim\nRECEIVER_EMAIL=chef@restaurant.de\nTAFEL_LOG_LEVEL=warn\n")

	cfg, err := Load(path, WithEnvFile(dotenv), env(map[string]string{
		"TAFEL_LOG_LEVEL":         "error",
		"TAFEL_SERVER_RATE_LIMIT": "0.5",
		"TAFEL_MAIL_PORT":         "587",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.TrustProxy)
	assert.Equal(t, 0.5, cfg.Server.RateLimit)
	assert.Equal(t, 10, cfg.Server.RateBurst)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, 45*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "redis:6379", cfg.Session.Redis.Addr)
	assert.Equal(t, "tafel:session:", cfg.Session.Redis.Prefix)
	assert.Equal(t, 5*time.Second, cfg.Mail.Timeout)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.True(t, cfg.Mail.Enabled())
	// process environment beats .env, which beats the file
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), WithEnvFile(""), env(nil))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{"unknown key", "server:\n  port: 80\n", nil},
		{"bad backend", "session:\n  backend: etcd\n", nil},
		{"bad email", "", map[string]string{"SENDER_EMAIL": "not-an-email"}},
		{"bad timezone", "restaurant:\n  timezone: Mars/Olympus\n", nil},
		{"bad duration", "mail:\n  timeout: soon\n", nil},
		{"zero timeout", "mail:\n  timeout: 0s\n", nil},
		{"redis without addr", "session:\n  backend: redis\n  redis:\n    addr: \"\"\n", nil},
		{"bad log format", "log:\n  format: xml\n", nil},
		{"bad encryption key", "session:\n  encryption_key: '***'\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutils.WriteFile(t, "tafel.yaml", tt.yaml)
			_, err := Load(path, WithEnvFile(""), env(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestRestaurantLocation(t *testing.T) {
	r := RestaurantConfig{Timezone: "Europe/Berlin"}
	assert.Equal(t, "Europe/Berlin", r.Location().String())

	assert.Equal(t, time.Local, RestaurantConfig{}.Location())
}

func TestSetKey(t *testing.T) {
	m := map[string]any{"a": map[string]any{"x": 1}}
	setKey(m, "a.b.c", "v")
	setKey(m, "top", "t")

	assert.Equal(t, map[string]any{
		"a":   map[string]any{"x": 1, "b": map[string]any{"c": "v"}},
		"top": "t",
	}, m)
}
