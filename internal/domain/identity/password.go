package identity

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltBytes    = 16
)

var errMalformedHash = errors.New("malformed password hash")

// HashPassword derives an scrypt key and returns it as "hex(key).salt", where
// salt is itself a hex string used verbatim as KDF input.
func HashPassword(password string) (string, error) {
	salt, err := GenerateToken(saltBytes)
	if err != nil {
		return "", err
	}

	key, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}

	return hex.EncodeToString(key) + "." + salt, nil
}

// ComparePassword reports whether password matches a value produced by HashPassword.
func ComparePassword(password, stored string) (bool, error) {
	hashed, salt, ok := strings.Cut(stored, ".")
	if !ok || hashed == "" || salt == "" {
		return false, errMalformedHash
	}

	expected, err := hex.DecodeString(hashed)
	if err != nil {
		return false, errMalformedHash
	}

	supplied, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, len(expected))
	if err != nil {
		return false, fmt.Errorf("derive key: %w", err)
	}

	return subtle.ConstantTimeCompare(expected, supplied) == 1, nil
}
