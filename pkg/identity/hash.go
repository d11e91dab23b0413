package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hashed is the storage-safe form of a Fields map.
type Hashed struct {
	Fields   map[string]string `json:"field_hashes"`
	Combined string            `json:"identity_hash"`
}

// HashField returns sha256(salt + ":" + name + ":" + value) in hex.
func HashField(salt, name, value string) string {
	sum := sha256.Sum256([]byte(salt + ":" + name + ":" + value))
	return hex.EncodeToString(sum[:])
}

// CombinedHash hashes every non-empty field as sorted "k:v" pairs joined by "|".
func CombinedHash(salt string, fields Fields) string {
	pairs := make([]string, 0, len(fields))
	for _, name := range fields.Names() {
		if v := fields[name]; v != "" {
			pairs = append(pairs, name+":"+v)
		}
	}
	sum := sha256.Sum256([]byte(salt + ":identity:" + strings.Join(pairs, "|")))
	return hex.EncodeToString(sum[:])
}

// Hash converts fields into per-field hashes plus the combined identity hash.
func Hash(salt string, fields Fields) Hashed {
	out := Hashed{
		Fields:   make(map[string]string, len(fields)),
		Combined: CombinedHash(salt, fields),
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		out.Fields[name] = HashField(salt, name, value)
	}
	return out
}

// IsHash reports whether s looks like a digest produced by this package:
// 64 lower-case hex characters.
func IsHash(s string) bool {
	if len(s) != 2*sha256.Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
