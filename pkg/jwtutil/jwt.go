package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleAdmin  = "admin"
	RoleSchool = "school"
	RoleParent = "parent"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Identity is the decoded caller: who (SubjectID, carried in "sub") and as what (Role)
type Identity struct {
	SubjectID string `json:"subjectId"`
	Role      string `json:"role"`
}

// Claims represents the JWT claims issued by this service
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTUtil signs and verifies HS256 tokens with a process-wide secret
type JWTUtil struct {
	signingKey []byte
	defaultTTL time.Duration
}

// NewJWTUtil creates a new JWT utility with the given secret and default lifetime
func NewJWTUtil(signingKey string, defaultTTL time.Duration) *JWTUtil {
	return &JWTUtil{
		signingKey: []byte(signingKey),
		defaultTTL: defaultTTL,
	}
}

// Issue creates a token for subjectID/role that expires after ttl
func (j *JWTUtil) Issue(subjectID, role string, ttl time.Duration) (string, error) {
	if subjectID == "" || role == "" {
		return "", errors.New("subject and role are required")
	}

	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.signingKey)
}

// IssueDefault creates a token using the configured lifetime
func (j *JWTUtil) IssueDefault(subjectID, role string) (string, error) {
	return j.Issue(subjectID, role, j.defaultTTL)
}

// Verify validates the token and returns the identity it asserts
func (j *JWTUtil) Verify(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Role == "" {
		return Identity{}, fmt.Errorf("%w: missing subject or role", ErrInvalidToken)
	}

	return Identity{SubjectID: claims.Subject, Role: claims.Role}, nil
}
