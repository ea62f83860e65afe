package model

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	UserID int64
	Email  string
}

// TokenManager generates and validates access tokens.
type TokenManager interface {
	GenerateAccessToken(identity Identity) (string, error)
	ParseAccessToken(token string) (Identity, error)
}
