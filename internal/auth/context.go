package auth

import "context"

type contextKey struct{}

// SystemSession is used by background jobs that act without an operator.
var SystemSession = Session{UserID: "system", Email: "system"}

// WithSession returns a context carrying the authenticated session.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// SessionFromContext returns the session stored by WithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok && s.UserID != ""
}
