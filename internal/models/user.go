package models

// User is the signed-in identity returned by the OAuth provider. It is kept
// in the session only and never stored in the database.
type User struct {
	ID             string
	Name           string
	Username       string
	Email          string
	ProfilePicture string
}

// DisplayName prefers the full name and falls back to the login
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
