package api

import (
	"fmt"
	"time"
)

// Config configures the HTTP listener.
type Config struct {
	Host         string        `long:"host" env:"HOST" default:"0.0.0.0" description:"Address to listen on"`
	Port         int           `long:"port" env:"PORT" default:"8000" description:"Port to listen on"`
	ReadTimeout  time.Duration `long:"read-timeout" env:"READ_TIMEOUT" default:"30s" description:"Maximum duration for reading a request"`
	WriteTimeout time.Duration `long:"write-timeout" env:"WRITE_TIMEOUT" default:"60s" description:"Maximum duration for writing a response"`
	IdleTimeout  time.Duration `long:"idle-timeout" env:"IDLE_TIMEOUT" default:"120s" description:"Maximum keep-alive idle duration"`

	RequestTimeout time.Duration `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"60s" description:"Maximum time a handler may spend on a request (0 disables)"`
}

// Validate checks the listener port and request timeout.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("api port must be between 0 and 65535, got %d", c.Port)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("api request timeout must not be negative, got %s", c.RequestTimeout)
	}
	return nil
}
