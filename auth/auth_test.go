// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func isHex(s string) bool {
	_, err := hex.DecodeString(s)
	return err == nil
}

func TestGenerateID(t *testing.T) {
	for _, n := range []int{8, 16, 24} {
		id, err := GenerateID(n)
		if err != nil {
			t.Fatalf("GenerateID(%d) error = %v", n, err)
		}
		if len(id) != n*2 || !isHex(id) {
			t.Errorf("GenerateID(%d) = %q, want %d hex chars", n, id, n*2)
		}
	}

	a, _ := GenerateID(16)
	b, _ := GenerateID(16)
	if a == b {
		t.Error("GenerateID() produced duplicate IDs")
	}
}

func TestValidateAdminKey(t *testing.T) {
	const id, salt = "scn-123", "admin-salt"
	key := GenerateAdminKey(id, salt)
	if strings.Contains(key, "=") {
		t.Errorf("admin key %q is padded", key)
	}

	tests := []struct {
		name    string
		id      string
		key     string
		salt    string
		wantErr bool
	}{
		{"valid key", id, key, salt, false},
		{"wrong key", id, "wrong-key", salt, true},
		{"other scenario", "scn-456", key, salt, true},
		{"other salt", id, key, "other-salt", true},
		{"empty key", id, "", salt, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminKey(tt.id, tt.key, tt.salt)
			if tt.wantErr && !errors.Is(err, ErrInvalidAdminKey) {
				t.Errorf("ValidateAdminKey() error = %v, want %v", err, ErrInvalidAdminKey)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateAdminKey() error = %v", err)
			}
		})
	}
}

func TestGenerateShareSlug(t *testing.T) {
	slug := GenerateShareSlug("scn-abc", "slug-salt")
	if slug != GenerateShareSlug("scn-abc", "slug-salt") {
		t.Error("GenerateShareSlug() is not deterministic")
	}
	if len(slug) == 0 || len(slug) > 11 {
		t.Errorf("slug %q has length %d", slug, len(slug))
	}
	for _, c := range slug {
		if !strings.ContainsRune(base62Chars, c) {
			t.Errorf("slug %q contains %q", slug, c)
		}
	}
	if slug == GenerateShareSlug("scn-xyz", "slug-salt") {
		t.Error("different scenarios share a slug")
	}
	if slug == GenerateShareSlug("scn-abc", "other-salt") {
		t.Error("different salts share a slug")
	}
}

func TestBase62(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0"},
		{61, "Z"},
		{62, "10"},
		{62*62 + 11, "10b"},
		{^uint64(0), "lYGhA16ahyf"},
	}

	for _, tt := range tests {
		if got := base62(tt.in); got != tt.want {
			t.Errorf("base62(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHashIP(t *testing.T) {
	for _, ip := range []string{"192.168.1.1", "::1", "2001:db8::8a2e:370:7334"} {
		h := HashIP(ip, "ip-salt")
		if len(h) != 16 || !isHex(h) {
			t.Errorf("HashIP(%q) = %q, want 16 hex chars", ip, h)
		}
		if strings.Contains(h, ip) {
			t.Errorf("HashIP(%q) leaks the address", ip)
		}
	}
	if HashIP("10.0.0.1", "a") == HashIP("10.0.0.1", "b") {
		t.Error("HashIP() ignores the salt")
	}
}

// One id and salt fed to every derivation give values sharing no HMAC bytes.
func TestPurposeSeparation(t *testing.T) {
	const id, salt = "scenario-1", "shared-salt"

	admin, err := base64.RawURLEncoding.DecodeString(GenerateAdminKey(id, salt))
	if err != nil {
		t.Fatalf("decode admin key: %v", err)
	}
	if len(admin) != 32 {
		t.Fatalf("admin key is %d bytes, want 32", len(admin))
	}

	if got := HashIP(id, salt); got == hex.EncodeToString(admin[:8]) {
		t.Error("IP hash equals admin key prefix")
	}
	if got := GenerateShareSlug(id, salt); got == base62(binary.BigEndian.Uint64(admin[:8])) {
		t.Error("share slug derived from admin key bytes")
	}

	ipSum := sign(salt, purposeIP, id)
	slugSum := sign(salt, purposeSlug, id)
	if HashIP(id, salt) == hex.EncodeToString(slugSum[:8]) {
		t.Error("IP hash equals slug HMAC prefix")
	}
	if string(ipSum) == string(slugSum) || string(ipSum) == string(admin) {
		t.Error("purposes produce identical HMACs")
	}
}

func BenchmarkGenerateAdminKey(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateAdminKey("scn-123", "admin-salt")
	}
}

func BenchmarkGenerateShareSlug(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateShareSlug("scn-123", "slug-salt")
	}
}
