// Package auth issues and verifies the HS256 JWTs that carry a caller's
// identity and role between requests.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"

	"github.com/edustack/teachstore/pkg/teachstore"
)

// Claim names. Stable: issued tokens stay valid across deploys.
const (
	claimUserID = "user_id"
	claimRoleID = "role_id"
)

// ErrInvalidToken indicates a missing, expired, or malformed token.
var ErrInvalidToken = errors.New("invalid token")

// Tokens issues and verifies access tokens for one signing key.
type Tokens struct {
	ja  *jwtauth.JWTAuth
	ttl time.Duration
}

// NewTokens creates a token authority with the given HS256 secret and token
// lifetime.
func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	return &Tokens{
		ja:  jwtauth.New("HS256", secret, nil),
		ttl: ttl,
	}
}

// Issue signs an access token for the user.
func (t *Tokens) Issue(user *teachstore.User) (string, error) {
	claims := map[string]interface{}{
		claimUserID: user.ID.String(),
		claimRoleID: int(user.RoleID),
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, t.ttl)

	_, tokenString, err := t.ja.Encode(claims)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// Verifier returns the middleware that extracts and validates the bearer
// token on each request.
func (t *Tokens) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verifier(t.ja)
}

// ActorFromContext reads the verified token claims placed in the request
// context by Verifier and reconstructs the acting identity.
func ActorFromContext(ctx context.Context) (teachstore.Actor, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return teachstore.Actor{}, ErrInvalidToken
	}

	rawID, ok := claims[claimUserID].(string)
	if !ok {
		return teachstore.Actor{}, fmt.Errorf("%w: missing %s claim", ErrInvalidToken, claimUserID)
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return teachstore.Actor{}, fmt.Errorf("%w: bad %s claim", ErrInvalidToken, claimUserID)
	}

	role, err := roleClaim(claims[claimRoleID])
	if err != nil {
		return teachstore.Actor{}, err
	}

	return teachstore.Actor{UserID: userID, Role: role}, nil
}

// roleClaim accepts the numeric representations a JSON round trip can
// produce for the role claim.
func roleClaim(v interface{}) (teachstore.Role, error) {
	switch n := v.(type) {
	case float64:
		return teachstore.Role(int(n)), nil
	case int:
		return teachstore.Role(n), nil
	case int64:
		return teachstore.Role(int(n)), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: bad %s claim", ErrInvalidToken, claimRoleID)
		}
		return teachstore.Role(int(i)), nil
	default:
		return 0, fmt.Errorf("%w: missing %s claim", ErrInvalidToken, claimRoleID)
	}
}
