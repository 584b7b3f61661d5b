package coursetest

import (
	"course-catalog-go/internal/model"
	"github.com/dgrijalva/jwt-go"
)

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type FederatedRequest struct {
	Token string `json:"token"`
}

type AuthResponse struct {
	AccessToken string     `json:"accessToken"`
	User        model.User `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type JWTClaims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

// Request is what the server saw of one incoming call.
type Request struct {
	Method        string
	Path          string
	Route         string
	Authorization string
	RequestID     string
}
