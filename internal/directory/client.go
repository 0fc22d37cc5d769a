package directory

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/go-ldap/ldap/v3"
)

const (
	// ConnectTimeout bounds dialing and binding.
	ConnectTimeout = 10 * time.Second
	// SearchTimeout bounds each search request.
	SearchTimeout = 30 * time.Second
)

// Conn is the subset of *ldap.Conn the client uses.
type Conn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	SetTimeout(timeout time.Duration)
	Close() error
}

// DialFunc opens an unauthenticated transport to the server described by b.
type DialFunc func(ctx context.Context, b *Binding) (Conn, error)

// Connection is a bound directory connection. Binding records which
// credential set was accepted.
type Connection struct {
	Conn
	Binding *Binding
}

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the network dialer, mainly for tests.
func WithDialer(dial DialFunc) Option {
	return func(c *Client) {
		c.dial = dial
	}
}

// Client connects to the directory on behalf of one set of instance credentials.
type Client struct {
	creds    Credentials
	username string
	password string
	dial     DialFunc
}

// NewClient creates a client. An empty username or password falls back to
// the configured service account for that field.
func NewClient(creds Credentials, username, password string, opts ...Option) *Client {
	if username == "" {
		username = creds.BindUsername
	}
	if password == "" {
		password = creds.BindPassword
	}
	c := &Client{
		creds:    creds,
		username: username,
		password: password,
		dial:     dialLDAP,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Username returns the instance username the client binds with first.
func (c *Client) Username() string {
	return c.username
}

// Connect binds with the instance credentials and, if that fails for any
// reason, retries with the service account. A client whose instance
// credentials are the service account's binds once.
func (c *Client) Connect(ctx context.Context) (*Connection, error) {
	if c.username == c.creds.BindUsername && c.password == c.creds.BindPassword {
		conn, err := c.open(ctx, true, "", "")
		if err != nil {
			log.Printf("[LDAP] Service account bind failed: %v", err)
			return nil, err
		}
		return conn, nil
	}

	conn, err := c.open(ctx, false, c.username, c.password)
	if err == nil {
		return conn, nil
	}
	log.Printf("[LDAP] Bind as %q failed, falling back to service account: %v", c.username, err)

	conn, err = c.open(ctx, true, "", "")
	if err != nil {
		log.Printf("[LDAP] Service account bind failed: %v", err)
		return nil, err
	}
	return conn, nil
}

// Authenticate reports whether the directory accepts exactly these
// credentials. There is no fallback and every error yields false.
func (c *Client) Authenticate(ctx context.Context, username, password string) bool {
	conn, err := c.open(ctx, false, username, password)
	if err != nil {
		log.Printf("[LDAP] Authentication failed for %q: %v", username, err)
		return false
	}
	if err := conn.Close(); err != nil {
		log.Printf("[LDAP] Failed to close connection: %v", err)
	}
	return true
}

func (c *Client) open(
	ctx context.Context,
	useServiceAccount bool,
	username, password string,
) (*Connection, error) {
	b, err := c.creds.BuildBinding(useServiceAccount, username, password)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectory, err)
	}

	conn, err := c.dial(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrDirectory, b.URL, err)
	}

	if err := conn.Bind(b.Username, b.Password); err != nil {
		_ = conn.Close()
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		return nil, fmt.Errorf("%w: bind: %v", ErrDirectory, err)
	}

	return &Connection{Conn: conn, Binding: b}, nil
}

func dialLDAP(ctx context.Context, b *Binding) (Conn, error) {
	dialer := &net.Dialer{Timeout: ConnectTimeout}
	opts := []ldap.DialOpt{ldap.DialWithDialer(dialer)}
	if b.TLSConfig != nil {
		opts = append(opts, ldap.DialWithTLSConfig(b.TLSConfig))
	}

	conn, err := ldap.DialURL(b.URL, opts...)
	if err != nil {
		return nil, err
	}
	conn.SetTimeout(ConnectTimeout)
	return conn, nil
}
