package model

import (
	"time"
)

// Token represents a single-use attendance token. A token is created by the
// issuance endpoint, bound to a device signature when first scanned, and
// consumed exactly once by a successful check-in. Rows are never deleted;
// expiry is derived from IssuedAt at read time.
type Token struct {
	Value           string     `json:"token"`
	IssuedAt        time.Time  `json:"issuedAt"`
	Opened          bool       `json:"opened"`
	OpenedAt        *time.Time `json:"openedAt,omitempty"`
	Used            bool       `json:"used"`
	UsedAt          *time.Time `json:"usedAt,omitempty"`
	DeviceSignature *string    `json:"deviceSignature,omitempty"`
	FingerprintHash *string    `json:"fingerprintHash,omitempty"`
}

// IsExpired reports whether the token's TTL has elapsed at the given instant.
func (t *Token) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(t.IssuedAt) > ttl
}
