package restmachinery

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config is an interface for any component that can supply configuration for
// the REST API server.
type Config interface {
	Port() int
	TLSEnabled() bool
	TLSCertPath() string
	TLSKeyPath() string
}

type config struct {
	APIPort        int    `envconfig:"API_SERVER_PORT" default:"8080"`
	APITLSEnabled  bool   `envconfig:"API_SERVER_TLS_ENABLED"`
	APITLSCertPath string `envconfig:"API_SERVER_TLS_CERT_PATH"`
	APITLSKeyPath  string `envconfig:"API_SERVER_TLS_KEY_PATH"`
}

// GetConfigFromEnvironment returns API server configuration obtained from the
// environment.
func GetConfigFromEnvironment() (Config, error) {
	c := config{}
	if err := envconfig.Process("", &c); err != nil {
		return nil, errors.Wrap(
			err,
			"error getting API server configuration from environment",
		)
	}
	return &c, nil
}

func (c *config) Port() int {
	return c.APIPort
}

func (c *config) TLSEnabled() bool {
	return c.APITLSEnabled
}

func (c *config) TLSCertPath() string {
	return c.APITLSCertPath
}

func (c *config) TLSKeyPath() string {
	return c.APITLSKeyPath
}
