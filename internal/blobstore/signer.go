package blobstore

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const purposeBlobID = "blob_id"

// ErrInvalidReference is returned for tokens that fail verification.
var ErrInvalidReference = errors.New("invalid blob reference")

type referenceClaims struct {
	Purpose string `json:"pur"`
	jwt.RegisteredClaims
}

// Signer issues and verifies the opaque references a client holds between
// a direct upload and the form submission that claims it.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSigner(key string, ttl time.Duration) *Signer {
	return &Signer{key: []byte(key), ttl: ttl, now: time.Now}
}

func (s *Signer) Sign(blobID int64) (string, error) {
	now := s.now()
	claims := referenceClaims{
		Purpose: purposeBlobID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(blobID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign blob %d: %w", blobID, err)
	}
	return signed, nil
}

// Verify returns the blob ID a reference was issued for.
func (s *Signer) Verify(token string) (int64, error) {
	claims := &referenceClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	if claims.Purpose != purposeBlobID {
		return 0, fmt.Errorf("%w: purpose %q", ErrInvalidReference, claims.Purpose)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q", ErrInvalidReference, claims.Subject)
	}
	return id, nil
}
