package paseto

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/o1egl/paseto"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"employee-management/models"
)

// KeySize is the symmetric key length v2.local requires.
const KeySize = 32

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the identity carried by a session token.
type Claims struct {
	UserID    primitive.ObjectID `json:"user_id"`
	Email     string             `json:"email"`
	Role      string             `json:"role"`
	IssuedAt  time.Time          `json:"issued_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// Maker issues and verifies PASETO v2 local tokens.
type Maker struct {
	v2  *paseto.V2
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewMaker(key []byte, ttl time.Duration) (*Maker, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("paseto key must be exactly %d bytes, got %d", KeySize, len(key))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &Maker{
		v2:  paseto.NewV2(),
		key: key,
		ttl: ttl,
		now: time.Now,
	}, nil
}

// DecodeKey accepts URL-safe base64 with or without padding, or standard
// base64, and checks the decoded length.
func DecodeKey(secret string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.URLEncoding,
		base64.RawURLEncoding,
		base64.StdEncoding,
		base64.RawStdEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		key, err := enc.DecodeString(secret)
		if err != nil {
			lastErr = err
			continue
		}
		if len(key) != KeySize {
			return nil, fmt.Errorf("secret must decode to %d bytes, got %d", KeySize, len(key))
		}
		return key, nil
	}
	return nil, fmt.Errorf("secret is not valid base64: %w", lastErr)
}

func (m *Maker) CreateToken(user *models.User) (string, *Claims, error) {
	now := m.now()
	exp := now.Add(m.ttl)

	token := paseto.JSONToken{
		Subject:    user.ID.Hex(),
		IssuedAt:   now,
		Expiration: exp,
		NotBefore:  now,
	}
	token.Set("user_id", user.ID.Hex())
	token.Set("email", user.Email)
	token.Set("role", user.Role)

	signed, err := m.v2.Encrypt(m.key, token, "")
	if err != nil {
		return "", nil, fmt.Errorf("failed to encrypt paseto token: %w", err)
	}
	return signed, &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: exp,
	}, nil
}

func (m *Maker) VerifyToken(tokenString string) (*Claims, error) {
	var token paseto.JSONToken
	var footer string

	if err := m.v2.Decrypt(tokenString, m.key, &token, &footer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	now := m.now()
	if !token.Expiration.IsZero() && now.After(token.Expiration) {
		return nil, ErrExpiredToken
	}
	if err := token.Validate(paseto.ValidAt(now)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := primitive.ObjectIDFromHex(token.Get("user_id"))
	if err != nil {
		return nil, fmt.Errorf("%w: bad user_id claim", ErrInvalidToken)
	}

	return &Claims{
		UserID:    userID,
		Email:     token.Get("email"),
		Role:      token.Get("role"),
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.Expiration,
	}, nil
}
