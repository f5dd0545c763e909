package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errSubjectMismatch = errors.New("credential subject does not match sid")

// issuer mints signed tokens used as credential payloads. The store treats
// them as opaque strings; verifying them after a read proves the payload came
// back byte-for-byte.
type issuer struct {
	secret []byte
}

func (i issuer) issue(sid string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i issuer) verify(token, sid string) error {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("verify credential: %w", err)
	}
	if claims.Subject != sid {
		return errSubjectMismatch
	}
	return nil
}
