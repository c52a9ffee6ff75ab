package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPort is the port the server listens on unless told otherwise
	DefaultPort = 8080

	// DefaultLanding is the file served for requests to "/"
	DefaultLanding = "virtual-environment.html"
)

var (
	ErrInvalidPort    = errors.New("port must be between 0 and 65535")
	ErrInvalidLanding = errors.New("landing page must be a plain file name")
)

// Config holds the settings for one server instance
type Config struct {
	Host            string
	Port            int
	Root            string
	Landing         string
	OpenBrowser     bool
	ShutdownTimeout time.Duration

	// AccessDB is the SQLite path for the request log. Empty disables it.
	AccessDB string
}

// Default returns the configuration the server starts with when no flags are given
func Default() Config {
	return Config{
		Host:            "",
		Port:            DefaultPort,
		Root:            ".",
		Landing:         DefaultLanding,
		OpenBrowser:     true,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Validate checks the configuration for values the server cannot use
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Port)
	}
	if c.Landing == "" || strings.ContainsAny(c.Landing, `/\`) || c.Landing == "." || c.Landing == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidLanding, c.Landing)
	}
	return nil
}

// Addr returns the listen address, empty host meaning all interfaces
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
