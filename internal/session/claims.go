package session

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hostelguard/hostelctl/internal/models"
)

// UserClaims is the client-side view of the session token. The client holds
// no signing secret, so claims are peeked without verification; the server
// re-validates the token on every request.
type UserClaims struct {
	UserID    uint
	Role      models.Role
	FullName  string
	Username  string
	Email     string
	ExpiresAt time.Time
}

// DisplayName picks the friendliest identifier for form prefill, preferring
// the full name, then the username, then the email address.
func (c UserClaims) DisplayName() string {
	if name := strings.TrimSpace(c.FullName); name != "" {
		return name
	}
	if c.Username != "" {
		return c.Username
	}
	return c.Email
}

// Expired reports whether the token's expiry has passed. Tokens without an
// exp claim never expire client-side.
func (c UserClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// PeekClaims decodes the token payload without signature verification.
func PeekClaims(token string) (UserClaims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return UserClaims{}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return UserClaims{}, errors.New("unexpected claim shape")
	}

	out := UserClaims{
		Role:     models.NormalizeRole(stringClaim(claims, "role")),
		FullName: firstStringClaim(claims, "full_name", "name"),
		Username: stringClaim(claims, "username"),
		Email:    stringClaim(claims, "email"),
	}

	if id, ok := extractUserID(claims); ok {
		out.UserID = id
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	return out, nil
}

// extractUserID tries the subject claim first, then the spellings seen from
// older server builds.
func extractUserID(claims jwt.MapClaims) (uint, bool) {
	for _, key := range []string{"sub", "user_id", "id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		if id, ok := normalizeUserID(value); ok {
			return id, true
		}
	}
	return 0, false
}

func normalizeUserID(value interface{}) (uint, bool) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return uint(parsed), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if value, ok := claims[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func firstStringClaim(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if value := stringClaim(claims, key); value != "" {
			return value
		}
	}
	return ""
}
