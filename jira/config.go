package jira

import (
	"encoding/base64"
	"net/http"
	"time"
)

// AuthType selects the authentication scheme.
type AuthType string

// Supported authentication schemes.
const (
	AuthAPIToken AuthType = "api_token" // Cloud: email + API token
	AuthBasic    AuthType = "basic"     // Server: username + password
	AuthPAT      AuthType = "pat"       // Server/DC: personal access token
)

// APIVersion selects the REST API version.
type APIVersion string

// API versions.
const (
	APIVersionAuto APIVersion = "auto"
	APIVersionV2   APIVersion = "v2" // Server/DC
	APIVersionV3   APIVersion = "v3" // Cloud
)

// Config holds Jira client configuration.
type Config struct {
	// URL is the instance base URL, e.g. https://your-domain.atlassian.net.
	URL string `yaml:"url"`

	// APIVersion defaults to v3 when empty or auto.
	APIVersion APIVersion `yaml:"api_version"`

	Auth AuthConfig `yaml:"auth"`

	// Timeout bounds each HTTP request. Zero means the transport default.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries caps retry attempts on 429 and 5xx responses.
	MaxRetries int `yaml:"max_retries"`
}

// AuthConfig holds credentials for one auth scheme.
type AuthConfig struct {
	Type     AuthType `yaml:"type"`
	Email    string   `yaml:"email"`
	Token    string   `yaml:"token"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
}

// Validate checks the config for a usable combination.
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrConfigURLRequired
	}
	switch c.Auth.Type {
	case "":
		return ErrConfigAuthTypeRequired
	case AuthAPIToken:
		if c.Auth.Email == "" || c.Auth.Token == "" {
			return ErrConfigAPITokenAuth
		}
	case AuthBasic:
		if c.Auth.Username == "" || c.Auth.Password == "" {
			return ErrConfigBasicAuth
		}
	case AuthPAT:
		if c.Auth.Token == "" {
			return ErrConfigPATAuth
		}
	default:
		return ErrConfigAuthTypeInvalid
	}
	return nil
}

// Version returns the effective API version.
func (c *Config) Version() APIVersion {
	if c.APIVersion == "" || c.APIVersion == APIVersionAuto {
		return APIVersionV3
	}
	return c.APIVersion
}

// applyAuth sets the Authorization header for the configured scheme.
func (c *Config) applyAuth(req *http.Request) {
	switch c.Auth.Type {
	case AuthAPIToken:
		req.Header.Set("Authorization", "Basic "+basicCredentials(c.Auth.Email, c.Auth.Token))
	case AuthBasic:
		req.Header.Set("Authorization", "Basic "+basicCredentials(c.Auth.Username, c.Auth.Password))
	case AuthPAT:
		req.Header.Set("Authorization", "Bearer "+c.Auth.Token)
	}
}

func basicCredentials(user, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + secret))
}
