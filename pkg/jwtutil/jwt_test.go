package jwtutil

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestTokenRoundTrip(t *testing.T) {
	j := NewJWTUtil("secret", time.Hour)

	for _, role := range []string{RoleAdmin, RoleSchool, RoleParent} {
		token, err := j.Issue("subject-1", role, time.Minute)
		if err != nil {
			t.Fatalf("issue error: %v", err)
		}

		identity, err := j.Verify(token)
		if err != nil {
			t.Fatalf("verify error: %v", err)
		}
		if identity.SubjectID != "subject-1" || identity.Role != role {
			t.Fatalf("unexpected identity %+v", identity)
		}
	}
}

func TestIssueDefaultUsesConfiguredTTL(t *testing.T) {
	j := NewJWTUtil("secret", 2*time.Hour)

	token, err := j.IssueDefault("parent-1", RoleParent)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	claims := &Claims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if lifetime != 2*time.Hour {
		t.Fatalf("expected 2h lifetime, got %s", lifetime)
	}
}

func TestExpiredToken(t *testing.T) {
	j := NewJWTUtil("secret", time.Hour)

	token, err := j.Issue("subject-1", RoleSchool, -time.Second)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if _, err := j.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestInvalidTokens(t *testing.T) {
	j := NewJWTUtil("secret", time.Hour)
	other := NewJWTUtil("other-secret", time.Hour)

	foreign, err := other.Issue("subject-1", RoleAdmin, time.Minute)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:             RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "subject-1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none error: %v", err)
	}

	valid, err := j.Issue("subject-1", RoleAdmin, time.Minute)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + ".AAAA"

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"alg none":     unsigned,
		"tampered":     tampered,
	}
	for name, token := range cases {
		if _, err := j.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestIssueRequiresSubjectAndRole(t *testing.T) {
	j := NewJWTUtil("secret", time.Hour)
	if _, err := j.Issue("", RoleParent, time.Minute); err == nil {
		t.Fatalf("expected error for empty subject")
	}
	if _, err := j.Issue("subject-1", "", time.Minute); err == nil {
		t.Fatalf("expected error for empty role")
	}
}
