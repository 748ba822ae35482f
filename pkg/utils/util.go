package util

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"employee-management/pkg/paseto"
)

// GeneratePasetoSecret returns a fresh value for PASETO_SECRET. `main genkey`
// prints it.
func GeneratePasetoSecret() (string, error) {
	key := make([]byte, paseto.KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("read random key: %w", err)
	}
	return base64.URLEncoding.EncodeToString(key), nil
}
