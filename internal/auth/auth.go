package auth

import "errors"

const RoleAdmin = "admin"

var ErrInvalidToken = errors.New("invalid session token")

// Session is what a verified token says about its holder.
type Session struct {
	AdminID int64
	Role    string
}

func (s *Session) IsAdmin() bool { return s != nil && s.Role == RoleAdmin }

// Verifier turns a presented token into a Session.
type Verifier interface {
	Verify(token string) (*Session, error)
}
