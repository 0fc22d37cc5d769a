package directory

import (
	"context"
	"fmt"
	"log"

	"github.com/go-ldap/ldap/v3"
	"golang.org/x/sync/errgroup"
)

const (
	pageSize = 250

	ouFilter          = "(objectClass=organizationalUnit)"
	enabledUserFilter = "(&(objectClass=user)(!(userAccountControl:1.2.840.113556.1.4.803:=2)))"

	searchTimeLimitSeconds = 30
	lookupTimeLimitSeconds = 10
)

// Searcher runs directory queries through a Client.
type Searcher struct {
	client *Client
}

// NewSearcher creates a searcher bound to the given client.
func NewSearcher(client *Client) *Searcher {
	return &Searcher{client: client}
}

// ListChildOUs returns the DNs of the OUs directly under the OU parent base.
// Any failure is logged and yields an empty list.
func (s *Searcher) ListChildOUs(ctx context.Context) []string {
	conn, err := s.client.Connect(ctx)
	if err != nil {
		log.Printf("[LDAP] Cannot list OUs: %v", err)
		return []string{}
	}
	defer closeConn(conn)

	ous, err := s.listChildOUs(conn)
	if err != nil {
		log.Printf("[LDAP] OU search under %q failed: %v", s.client.creds.OUParentBase, err)
		return []string{}
	}
	return ous
}

func (s *Searcher) listChildOUs(conn Conn) ([]string, error) {
	req := ldap.NewSearchRequest(
		s.client.creds.OUParentBase,
		ldap.ScopeSingleLevel,
		ldap.NeverDerefAliases,
		0,
		searchTimeLimitSeconds,
		false,
		ouFilter,
		[]string{attrDistinguishedName},
		nil,
	)

	conn.SetTimeout(SearchTimeout)
	res, err := conn.Search(req)
	if err != nil {
		return nil, err
	}

	ous := make([]string, 0, len(res.Entries))
	for _, entry := range res.Entries {
		dn := entry.GetAttributeValue(attrDistinguishedName)
		if dn == "" {
			dn = entry.DN
		}
		if dn != "" {
			ous = append(ous, dn)
		}
	}
	return ous, nil
}

// SearchUsersInOU returns the enabled users anywhere under ouDN.
// Any failure is logged and yields an empty list.
func (s *Searcher) SearchUsersInOU(ctx context.Context, ouDN string) []User {
	users, err := s.searchOU(ctx, ouDN)
	if err != nil {
		log.Printf("[LDAP] User search in %q failed: %v", ouDN, err)
		return []User{}
	}
	return users
}

func (s *Searcher) searchOU(ctx context.Context, ouDN string) ([]User, error) {
	conn, err := s.client.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	req := ldap.NewSearchRequest(
		ouDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		searchTimeLimitSeconds,
		false,
		enabledUserFilter,
		userAttributes,
		nil,
	)

	users := []User{}
	err = pagedSearch(ctx, conn, req, func(entry *ldap.Entry) {
		if u, ok := userFromEntry(entry); ok {
			users = append(users, u)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %v", ErrDirectory, ouDN, err)
	}
	return users, nil
}

// SearchAllUsers searches every child OU concurrently and concatenates the
// results in OU order, then numbers the users 0..n-1. OUs whose search
// fails contribute no users and are listed in FailedOUs.
func (s *Searcher) SearchAllUsers(ctx context.Context) (*SearchResult, error) {
	conn, err := s.client.Connect(ctx)
	if err != nil {
		return nil, err
	}
	ous, err := s.listChildOUs(conn)
	closeConn(conn)
	if err != nil {
		log.Printf("[LDAP] OU search under %q failed: %v", s.client.creds.OUParentBase, err)
	}
	if len(ous) == 0 {
		return nil, fmt.Errorf("%w under %q", ErrNoOrganizationalUnits, s.client.creds.OUParentBase)
	}

	perOU := make([][]User, len(ous))
	errs := make([]error, len(ous))

	var g errgroup.Group
	if limit := s.client.creds.SearchConcurrency; limit > 0 {
		g.SetLimit(limit)
	}
	for i, ou := range ous {
		i, ou := i, ou
		g.Go(func() error {
			perOU[i], errs[i] = s.searchOU(ctx, ou)
			return nil
		})
	}
	_ = g.Wait()

	result := &SearchResult{Users: []User{}, FailedOUs: []string{}}
	for i, ou := range ous {
		if errs[i] != nil {
			log.Printf("[LDAP] User search in %q failed: %v", ou, errs[i])
			result.FailedOUs = append(result.FailedOUs, ou)
			continue
		}
		result.Users = append(result.Users, perOU[i]...)
	}
	for i := range result.Users {
		result.Users[i].ID = i
	}

	log.Printf("[LDAP] Found %d users across %d OUs (%d failed)",
		len(result.Users), len(ous), len(result.FailedOUs))
	return result, nil
}

// GetAuthenticatedUserInfo looks up the client's own username under the
// base DN. It returns false when the user cannot be found or on any error.
func (s *Searcher) GetAuthenticatedUserInfo(ctx context.Context) (*User, bool) {
	conn, err := s.client.Connect(ctx)
	if err != nil {
		log.Printf("[LDAP] Cannot look up %q: %v", s.client.username, err)
		return nil, false
	}
	defer closeConn(conn)

	filter := fmt.Sprintf(
		"(&(objectClass=user)(%s=%s))",
		attrAccountName,
		ldap.EscapeFilter(s.client.username),
	)
	req := ldap.NewSearchRequest(
		s.client.creds.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		1,
		lookupTimeLimitSeconds,
		false,
		filter,
		userAttributes,
		nil,
	)

	conn.SetTimeout(SearchTimeout)
	res, err := conn.Search(req)
	if err != nil && !ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) {
		log.Printf("[LDAP] Lookup of %q failed: %v", s.client.username, err)
		return nil, false
	}
	if res == nil || len(res.Entries) == 0 {
		return nil, false
	}

	user, ok := userFromEntry(res.Entries[0])
	if !ok {
		return nil, false
	}
	return &user, true
}

// pagedSearch runs req with the simple paged results control, calling fn
// for every entry until the server returns an empty cookie.
func pagedSearch(ctx context.Context, conn Conn, req *ldap.SearchRequest, fn func(*ldap.Entry)) error {
	paging := ldap.NewControlPaging(pageSize)
	req.Controls = append(req.Controls, paging)
	conn.SetTimeout(SearchTimeout)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := conn.Search(req)
		if err != nil {
			return err
		}
		for _, entry := range res.Entries {
			fn(entry)
		}

		ctrl, ok := ldap.FindControl(res.Controls, ldap.ControlTypePaging).(*ldap.ControlPaging)
		if !ok || len(ctrl.Cookie) == 0 {
			return nil
		}
		paging.SetCookie(ctrl.Cookie)
	}
}

func closeConn(conn *Connection) {
	if err := conn.Close(); err != nil {
		log.Printf("[LDAP] Failed to close connection: %v", err)
	}
}
