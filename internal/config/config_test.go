package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, "virtual-environment.html", cfg.Landing)
	assert.True(t, cfg.OpenBrowser)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.AccessDB)
	require.NoError(t, cfg.Validate())
}

func TestAddr(t *testing.T) {
	t.Run("all interfaces", func(t *testing.T) {
		assert.Equal(t, ":8080", Default().Addr())
	})

	t.Run("explicit host", func(t *testing.T) {
		cfg := Default()
		cfg.Host = "127.0.0.1"
		cfg.Port = 9000
		assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	})

	t.Run("ipv6 host", func(t *testing.T) {
		cfg := Default()
		cfg.Host = "::1"
		assert.Equal(t, "[::1]:8080", cfg.Addr())
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"ephemeral port", func(c *Config) { c.Port = 0 }, nil},
		{"negative port", func(c *Config) { c.Port = -1 }, ErrInvalidPort},
		{"port too large", func(c *Config) { c.Port = 70000 }, ErrInvalidPort},
		{"empty landing", func(c *Config) { c.Landing = "" }, ErrInvalidLanding},
		{"landing with slash", func(c *Config) { c.Landing = "a/b.html" }, ErrInvalidLanding},
		{"landing with backslash", func(c *Config) { c.Landing = `a\b.html` }, ErrInvalidLanding},
		{"landing dot dot", func(c *Config) { c.Landing = ".." }, ErrInvalidLanding},
		{"other landing", func(c *Config) { c.Landing = "index.html" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
