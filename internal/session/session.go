package session

import "context"

// Session is the current identity. Anonymous sessions are full participants;
// they only differ in how they were created.
type Session struct {
	UserID    string `json:"user_id"`
	Token     string `json:"token"`
	Anonymous bool   `json:"anonymous"`
}

// Provider is the identity service: an interactive flow that may fail, and
// an anonymous flow assumed to always be available.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	Anonymous(ctx context.Context) (*Session, error)
}

// Store persists the session between invocations. Load returns nil, nil
// when no session is stored.
type Store interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}
