// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

var ErrInvalidAdminKey = errors.New("invalid admin key")

// HMAC purposes; a salt shared between uses still yields unrelated values.
const (
	purposeAdmin = "admin"
	purposeSlug  = "slug"
	purposeIP    = "ip"
)

const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func sign(salt, purpose, value string) []byte {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(purpose))
	h.Write([]byte{0})
	h.Write([]byte(value))
	return h.Sum(nil)
}

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateAdminKey derives the key that authorises changes to a scenario.
// Keys are never stored; they are recomputed to validate.
func GenerateAdminKey(scenarioID, salt string) string {
	return base64.RawURLEncoding.EncodeToString(sign(salt, purposeAdmin, scenarioID))
}

// ValidateAdminKey checks adminKey in constant time.
func ValidateAdminKey(scenarioID, adminKey, salt string) error {
	expected := GenerateAdminKey(scenarioID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// GenerateShareSlug derives a short alphanumeric slug for sharing a scenario.
func GenerateShareSlug(scenarioID, salt string) string {
	sum := sign(salt, purposeSlug, scenarioID)
	return base62(binary.BigEndian.Uint64(sum[:8]))
}

func base62(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [11]byte // 62^11 > 2^64
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = base62Chars[n%62]
		n /= 62
	}
	return string(buf[i:])
}

// HashIP returns 16 hex chars of a salted HMAC so addresses are never stored.
func HashIP(ip, salt string) string {
	sum := sign(salt, purposeIP, ip)
	return hex.EncodeToString(sum[:8])
}
