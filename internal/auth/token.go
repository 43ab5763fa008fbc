package auth

import (
	"errors"
	"fmt"
	"strings"

	jwt "github.com/golang-jwt/jwt/v4"

	"storefront/internal/domain"
)

var (
	// ErrMissingToken is returned when the request carries no bearer token.
	ErrMissingToken = errors.New("auth: missing bearer token")
	// ErrInvalidToken wraps signature, expiry and claim failures.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Claims are the fields the storefront reads from an externally issued token.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 bearer tokens issued by the identity service.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Verify parses the raw token and returns the principal it names.
func (v *Verifier) Verify(raw string) (domain.Principal, error) {
	if raw == "" {
		return domain.Principal{}, ErrMissingToken
	}
	if len(v.secret) == 0 {
		return domain.Principal{}, fmt.Errorf("%w: verifier has no secret", ErrInvalidToken)
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: subject required", ErrInvalidToken)
	}

	role := domain.RoleUser
	if strings.EqualFold(claims.Role, domain.RoleAdmin) {
		role = domain.RoleAdmin
	}
	return domain.Principal{ID: claims.Subject, Role: role}, nil
}

// Issue signs a token for the principal. The storefront never logs users in; this exists for the
// seed tool and tests.
func Issue(secret string, p domain.Principal, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = p.ID
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: p.Role, RegisteredClaims: claims})
	return token.SignedString([]byte(secret))
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
