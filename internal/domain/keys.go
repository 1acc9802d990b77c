package domain

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyUserRole  CtxKey = "Role"
	KeyUserToken CtxKey = "Token"
	KeyRequestID CtxKey = "RequestID"
)
