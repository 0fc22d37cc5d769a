package directory

import "github.com/go-ldap/ldap/v3"

// Directory attributes read for each user.
const (
	attrAccountName       = "sAMAccountName"
	attrDisplayName       = "displayName"
	attrTitle             = "title"
	attrMail              = "mail"
	attrDistinguishedName = "distinguishedName"
)

var userAttributes = []string{attrAccountName, attrDisplayName, attrTitle, attrMail}

// User is a directory account projected to the fields the service uses.
// ID is assigned by SearchAllUsers after aggregation and is zero otherwise.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullname"`
	Title    string `json:"title"`
	Email    string `json:"email"`
}

// SearchResult aggregates a directory-wide user search.
type SearchResult struct {
	Users []User `json:"users"`
	// FailedOUs lists the OUs whose search failed; their users are missing from Users.
	FailedOUs []string `json:"failedOus"`
}

// userFromEntry converts an entry, returning false when it has no account name.
func userFromEntry(entry *ldap.Entry) (User, bool) {
	username := entry.GetAttributeValue(attrAccountName)
	if username == "" {
		return User{}, false
	}
	return User{
		Username: username,
		FullName: entry.GetAttributeValue(attrDisplayName),
		Title:    entry.GetAttributeValue(attrTitle),
		Email:    entry.GetAttributeValue(attrMail),
	}, true
}
