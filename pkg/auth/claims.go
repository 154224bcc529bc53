package auth

import "github.com/golang-jwt/jwt/v5"

// ActorClaims identifies a signed-in shopper. The subject is the user id.
type ActorClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
