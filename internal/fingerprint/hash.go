package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RawSignals is the client-supplied signal set used for fingerprinting.
// Every field is optional; missing signals simply narrow the hash input.
type RawSignals struct {
	UserAgent        string  `json:"user_agent"`
	ScreenResolution string  `json:"screen_resolution"`
	Timezone         string  `json:"timezone"`
	Language         string  `json:"language"`
	Platform         string  `json:"platform"`
	ColorDepth       int     `json:"color_depth"`
	PixelRatio       float64 `json:"pixel_ratio"`
	Fonts            string  `json:"fonts"`
	CanvasHash       string  `json:"canvas"`
	WebGLRenderer    string  `json:"webgl"`
	TouchSupport     bool    `json:"touch_support"`
	CPUCores         int     `json:"cpu_cores"`
	MaxTouchPoints   int     `json:"max_touch_points"`
	ConnectionType   string  `json:"connection_type"`
}

// components returns the ordered, fixed field list hashed into the
// fingerprint. Order is part of the contract: reordering would silently
// re-key every stored device.
func (s RawSignals) components() []string {
	return []string{
		DeriveSignature(s.UserAgent).Canonical(),
		s.ScreenResolution,
		s.Timezone,
		s.Language,
		s.Platform,
		intComponent(s.ColorDepth),
		floatComponent(s.PixelRatio),
		s.Fonts,
		s.CanvasHash,
		s.WebGLRenderer,
		strconv.FormatBool(s.TouchSupport),
		intComponent(s.CPUCores),
		intComponent(s.MaxTouchPoints),
		s.ConnectionType,
	}
}

// Hash derives the stable, unsalted device fingerprint. This is the only
// hash persisted and the only one consulted by admission decisions.
func Hash(s RawSignals) string {
	return digest(s.components())
}

// SaltedHash mixes the current hour-aligned timestamp into the fingerprint.
// It rotates every hour and is used only as an anonymized device id in logs
// and diagnostics; it must never be used as a dedup key.
func SaltedHash(s RawSignals, now time.Time) string {
	salt := strconv.FormatInt(now.UTC().Truncate(time.Hour).Unix(), 10)
	return digest(append(s.components(), salt))
}

func digest(components []string) string {
	nonEmpty := make([]string, 0, len(components))
	for _, c := range components {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	sum := sha256.Sum256([]byte(strings.Join(nonEmpty, "|")))
	return hex.EncodeToString(sum[:])
}

func intComponent(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func floatComponent(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%g", v)
}

// UniquenessScore is a 0-100 estimate of how identifying the supplied
// signals are, used for observability only, never for admission decisions.
func UniquenessScore(s RawSignals) int {
	score := 0
	if s.UserAgent != "" {
		score += 30
	}
	if s.ScreenResolution != "" {
		score += 15
	}
	if s.CanvasHash != "" {
		score += 20
	}
	if s.WebGLRenderer != "" {
		score += 15
	}
	if s.Fonts != "" {
		score += 10
	}
	if s.Timezone != "" {
		score += 5
	}
	if s.Language != "" {
		score += 3
	}
	if s.CPUCores > 0 {
		score += 2
	}
	return score
}
