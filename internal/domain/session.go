package domain

// Session is the authenticated state of this client: a token pair plus the
// user snapshot issued with it. The tokens are either both present or both
// absent; a partial session is never persisted.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// Valid reports whether the session holds a complete token pair.
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != "" && s.RefreshToken != ""
}
