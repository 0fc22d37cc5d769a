package directory

import (
	"crypto/tls"
	"fmt"
)

// Credentials is the process-wide directory configuration.
type Credentials struct {
	Host         string
	Port         int
	UseTLS       bool
	BindUsername string
	BindPassword string
	BaseDN       string
	OUParentBase string

	// SearchConcurrency bounds concurrent per-OU searches; 0 means unbounded.
	SearchConcurrency int
}

// Binding is a fully resolved server address plus the credentials to bind with.
type Binding struct {
	URL            string
	Username       string
	Password       string
	ServiceAccount bool
	TLSConfig      *tls.Config // nil for plain ldap://
}

// BuildBinding resolves the server URL and the credentials to use. With
// useServiceAccount the configured bind account is used; otherwise the given
// username and password, which must both be non-empty.
func (c Credentials) BuildBinding(useServiceAccount bool, username, password string) (*Binding, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("%w: directory server not set", ErrConfiguration)
	}

	b := &Binding{ServiceAccount: useServiceAccount}
	if useServiceAccount {
		b.Username = c.BindUsername
		b.Password = c.BindPassword
	} else {
		if username == "" || password == "" {
			return nil, fmt.Errorf("%w: username and password required for user bind", ErrConfiguration)
		}
		b.Username = username
		b.Password = password
	}

	scheme := "ldap"
	if c.UseTLS {
		scheme = "ldaps"
		// Certificate verification stays on: a bad certificate fails the dial.
		b.TLSConfig = &tls.Config{
			ServerName: c.Host,
			MinVersion: tls.VersionTLS12,
		}
	}
	b.URL = fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)

	return b, nil
}
