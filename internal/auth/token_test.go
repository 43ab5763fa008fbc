package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"

	"storefront/internal/domain"
)

func TestVerifier_RoundTrip(t *testing.T) {
	token, err := Issue("secret", domain.Principal{ID: "u1", Role: domain.RoleAdmin}, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	p, err := NewVerifier("secret").Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.ID != "u1" || !p.IsAdmin() {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestVerifier_DefaultsToUserRole(t *testing.T) {
	token, err := Issue("secret", domain.Principal{ID: "u1", Role: "superuser"}, jwt.RegisteredClaims{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	p, err := NewVerifier("secret").Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.Role != domain.RoleUser {
		t.Fatalf("expected user role, got %q", p.Role)
	}
}

func TestVerifier_Rejects(t *testing.T) {
	expired, _ := Issue("secret", domain.Principal{ID: "u1"}, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	wrongKey, _ := Issue("other", domain.Principal{ID: "u1"}, jwt.RegisteredClaims{})
	noSubject, _ := Issue("secret", domain.Principal{}, jwt.RegisteredClaims{})
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := map[string]struct {
		token string
		want  error
	}{
		"empty":      {token: "", want: ErrMissingToken},
		"garbage":    {token: "not-a-jwt", want: ErrInvalidToken},
		"expired":    {token: expired, want: ErrInvalidToken},
		"wrong key":  {token: wrongKey, want: ErrInvalidToken},
		"no subject": {token: noSubject, want: ErrInvalidToken},
		"alg none":   {token: none, want: ErrInvalidToken},
	}
	v := NewVerifier("secret")
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := v.Verify(tc.token); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"":             "",
		"Bearer":       "",
	}
	for header, want := range cases {
		if got := BearerToken(header); got != want {
			t.Fatalf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestPrincipalContext(t *testing.T) {
	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Fatalf("expected no principal")
	}
	ctx := WithPrincipal(context.Background(), domain.Principal{ID: "u1", Role: domain.RoleUser})
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.ID != "u1" {
		t.Fatalf("unexpected principal %+v ok=%v", p, ok)
	}
}
