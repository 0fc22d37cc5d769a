package directory

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// fakeDirectory is an in-memory directory server reachable through WithDialer.
type fakeDirectory struct {
	mu sync.Mutex

	accounts map[string]string        // bind username -> password
	ous      []string                 // child OU DNs under the parent base
	users    map[string][]*ldap.Entry // OU DN -> user entries
	failOUs  map[string]bool          // OU DNs whose search errors
	pageSize int                      // entries per page returned by the server
	dialErr  error                    // returned by every dial when set
	delays   map[string]time.Duration // per-OU artificial latency

	dials    []*Binding
	binds    []string
	inFlight int
	maxSeen  int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		accounts: map[string]string{"svc": "svc-pass"},
		users:    map[string][]*ldap.Entry{},
		failOUs:  map[string]bool{},
		delays:   map[string]time.Duration{},
		pageSize: 2,
	}
}

func (f *fakeDirectory) dial(_ context.Context, b *Binding) (Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dials = append(f.dials, b)
	if f.dialErr != nil {
		return nil, f.dialErr
	}
	return &fakeConn{dir: f}, nil
}

func (f *fakeDirectory) addUser(ou, username, displayName string) {
	attrs := map[string][]string{
		"displayName": {displayName},
		"title":       {"Engineer"},
		"mail":        {username + "@example.com"},
	}
	if username != "" {
		attrs["sAMAccountName"] = []string{username}
	}
	f.users[ou] = append(f.users[ou], ldap.NewEntry("CN="+displayName+","+ou, attrs))
}

type fakeConn struct {
	dir *fakeDirectory
}

func (c *fakeConn) Bind(username, password string) error {
	c.dir.mu.Lock()
	defer c.dir.mu.Unlock()
	c.dir.binds = append(c.dir.binds, username)
	if pw, ok := c.dir.accounts[username]; ok && pw == password {
		return nil
	}
	return ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("invalid credentials"))
}

func (c *fakeConn) SetTimeout(time.Duration) {}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	if req.Scope == ldap.ScopeSingleLevel {
		c.dir.mu.Lock()
		defer c.dir.mu.Unlock()
		res := &ldap.SearchResult{}
		for _, ou := range c.dir.ous {
			res.Entries = append(res.Entries, ldap.NewEntry(ou, map[string][]string{
				"distinguishedName": {ou},
			}))
		}
		return res, nil
	}

	if strings.Contains(req.Filter, "sAMAccountName=") {
		return c.lookup(req)
	}
	return c.page(req)
}

func (c *fakeConn) lookup(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	c.dir.mu.Lock()
	defer c.dir.mu.Unlock()
	res := &ldap.SearchResult{}
	for _, entries := range c.dir.users {
		for _, e := range entries {
			name := e.GetAttributeValue("sAMAccountName")
			if name != "" && strings.Contains(req.Filter, "(sAMAccountName="+name+")") {
				res.Entries = append(res.Entries, e)
			}
		}
	}
	return res, nil
}

func (c *fakeConn) page(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	c.dir.mu.Lock()
	c.dir.inFlight++
	if c.dir.inFlight > c.dir.maxSeen {
		c.dir.maxSeen = c.dir.inFlight
	}
	delay := c.dir.delays[req.BaseDN]
	fail := c.dir.failOUs[req.BaseDN]
	entries := c.dir.users[req.BaseDN]
	size := c.dir.pageSize
	c.dir.mu.Unlock()

	defer func() {
		c.dir.mu.Lock()
		c.dir.inFlight--
		c.dir.mu.Unlock()
	}()

	time.Sleep(delay)
	if fail {
		return nil, ldap.NewError(ldap.LDAPResultUnwillingToPerform, errors.New("search refused"))
	}

	offset := 0
	if ctrl, ok := ldap.FindControl(req.Controls, ldap.ControlTypePaging).(*ldap.ControlPaging); ok &&
		len(ctrl.Cookie) > 0 {
		offset, _ = strconv.Atoi(string(ctrl.Cookie))
	}

	end := min(offset+size, len(entries))
	res := &ldap.SearchResult{Entries: entries[offset:end]}
	var cookie []byte
	if end < len(entries) {
		cookie = []byte(strconv.Itoa(end))
	}
	res.Controls = []ldap.Control{&ldap.ControlPaging{PagingSize: uint32(size), Cookie: cookie}}
	return res, nil
}

func testCredentials() Credentials {
	return Credentials{
		Host:         "dc01.example.local",
		Port:         389,
		BindUsername: "svc",
		BindPassword: "svc-pass",
		BaseDN:       "DC=example,DC=local",
		OUParentBase: "OU=Staff,DC=example,DC=local",
	}
}
