package models

// Identity is the account representation embedded in access tokens under
// the "account" claim and returned by GET /auth/me.
type Identity struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	FullName string  `json:"fullname"`
	Title    string  `json:"title"`
	Email    string  `json:"email"`
	Roles    []int64 `json:"roles"`
}
