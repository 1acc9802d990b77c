package domain

import (
	"context"
)

// User mirrors the CMS users-permissions record for the authenticated caller.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Confirmed bool   `json:"confirmed"`
	Blocked   bool   `json:"blocked"`
}

// Session is the authenticated caller as carried through request context.
// Token is the caller's own bearer credential and doubles as the user-tier
// credential for upstream CMS calls.
type Session struct {
	UserID int64
	Email  string
	Role   string
	Token  string
}

// SessionFromContext assembles the session from context values set by the
// auth middleware. Returns false when the request is unauthenticated.
func SessionFromContext(ctx context.Context) (Session, bool) {
	userID, ok := ctx.Value(KeyUserID).(int64)
	if !ok || userID == 0 {
		return Session{}, false
	}
	email, _ := ctx.Value(KeyUserEmail).(string)
	role, _ := ctx.Value(KeyUserRole).(string)
	token, _ := ctx.Value(KeyUserToken).(string)
	return Session{UserID: userID, Email: email, Role: role, Token: token}, true
}

// ContextWithSession is the inverse of SessionFromContext, used by the auth
// middleware and by tests.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	ctx = context.WithValue(ctx, KeyUserID, s.UserID)
	ctx = context.WithValue(ctx, KeyUserEmail, s.Email)
	ctx = context.WithValue(ctx, KeyUserRole, s.Role)
	ctx = context.WithValue(ctx, KeyUserToken, s.Token)
	return ctx
}

// UserRepository resolves the caller's CMS account from a presented token.
type UserRepository interface {
	GetMe(ctx context.Context, token string) (*User, error)
}
