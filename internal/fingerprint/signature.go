package fingerprint

import (
	"regexp"
	"strings"
)

// Unknown is the default for any signature field that cannot be classified.
const Unknown = "unknown"

// Device types.
const (
	TypeMobile  = "mobile"
	TypeTablet  = "tablet"
	TypeDesktop = "desktop"
)

// Signature is the coarse classification of a device derived from
// user-agent-like text. Classification never fails; absent signal yields
// the default signature, not an error.
type Signature struct {
	Type           string `json:"type"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	OS             string `json:"os"`
	OSVersion      string `json:"osVersion"`
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browserVersion"`
}

// Canonical returns the stable string form used for token device binding
// and as the leading component of the fingerprint hash.
func (s Signature) Canonical() string {
	return strings.Join([]string{
		s.Type, s.Brand, s.Model, s.OS, s.OSVersion, s.Browser, s.BrowserVersion,
	}, "/")
}

// deviceRule pairs a user-agent pattern with a classifier. Rules are
// evaluated in order and the first match wins, so brand-specific rules
// must precede the generic fallbacks.
type deviceRule struct {
	pattern  *regexp.Regexp
	classify func(m []string, sig *Signature)
}

var deviceRules = []deviceRule{
	// Apple
	{regexp.MustCompile(`(?i)iphone`), func(m []string, sig *Signature) {
		sig.Type, sig.Brand, sig.Model = TypeMobile, "Apple", "iPhone"
	}},
	{regexp.MustCompile(`(?i)ipad`), func(m []string, sig *Signature) {
		sig.Type, sig.Brand, sig.Model = TypeTablet, "Apple", "iPad"
	}},
	// Samsung ships its model code in the UA (e.g. SM-A515F)
	{regexp.MustCompile(`(?i)\b(sm-[a-z]\d{3}[a-z]?)\b`), func(m []string, sig *Signature) {
		sig.Type, sig.Brand, sig.Model = TypeMobile, "Samsung", strings.ToUpper(m[1])
	}},
	{regexp.MustCompile(`(?i)samsung`), func(m []string, sig *Signature) {
		sig.Type, sig.Brand = TypeMobile, "Samsung"
	}},
	// Huawei / Honor
	{regexp.MustCompile(`(?i)\b(huawei|honor)[\s_-]?([a-z0-9-]+)?`), func(m []string, sig *Signature) {
		sig.Type, sig.Brand = TypeMobile, "Huawei"
		if m[2] != "" {
			sig.Model = strings.ToUpper(m[2])
		}
	}},
	// Xiaomi family
	{regexp.MustCompile(`(?i)\b(redmi|poco|mi)[\s_-]([a-z0-9]+)`), func(m []string, sig *Signature) {
		sig.Type, sig.Brand = TypeMobile, "Xiaomi"
		line := strings.ToLower(m[1])
		sig.Model = strings.ToUpper(line[:1]) + line[1:] + " " + strings.ToUpper(m[2])
	}},
	// Oppo / Vivo / OnePlus / Realme
	{regexp.MustCompile(`(?i)\b(cph\d{4})\b`), func(m []string, sig *Signature) {
		sig.Type, sig.Brand, sig.Model = TypeMobile, "Oppo", strings.ToUpper(m[1])
	}},
	{regexp.MustCompile(`(?i)\bvivo[\s_-]?([a-z0-9]+)?`), func(m []string, sig *Signature) {
		sig.Type, sig.Brand = TypeMobile, "Vivo"
		if m[1] != "" {
			sig.Model = strings.ToUpper(m[1])
		}
	}},
	{regexp.MustCompile(`(?i)oneplus[\s_-]?([a-z0-9]+)?`), func(m []string, sig *Signature) {
		sig.Type, sig.Brand = TypeMobile, "OnePlus"
		if m[1] != "" {
			sig.Model = strings.ToUpper(m[1])
		}
	}},
	{regexp.MustCompile(`(?i)\b(rmx\d{4})\b`), func(m []string, sig *Signature) {
		sig.Type, sig.Brand, sig.Model = TypeMobile, "Realme", strings.ToUpper(m[1])
	}},
	// Google Pixel
	{regexp.MustCompile(`(?i)\bpixel[\s_-]?(\d[a-z]*)?`), func(m []string, sig *Signature) {
		sig.Type, sig.Brand = TypeMobile, "Google"
		sig.Model = strings.TrimSpace("Pixel " + m[1])
	}},
	// Generic Android: "Mobile" token separates phones from tablets
	{regexp.MustCompile(`(?i)android.*mobile`), func(m []string, sig *Signature) {
		sig.Type = TypeMobile
	}},
	{regexp.MustCompile(`(?i)android`), func(m []string, sig *Signature) {
		sig.Type = TypeTablet
	}},
	// Desktop fallbacks
	{regexp.MustCompile(`(?i)windows nt`), func(m []string, sig *Signature) {
		sig.Type = TypeDesktop
	}},
	{regexp.MustCompile(`(?i)macintosh`), func(m []string, sig *Signature) {
		sig.Type, sig.Brand = TypeDesktop, "Apple"
	}},
	{regexp.MustCompile(`(?i)linux`), func(m []string, sig *Signature) {
		sig.Type = TypeDesktop
	}},
}

var osRules = []deviceRule{
	{regexp.MustCompile(`(?i)(?:iphone|ipad).*? os (\d+[._]\d+(?:[._]\d+)?)`), func(m []string, sig *Signature) {
		sig.OS, sig.OSVersion = "iOS", strings.ReplaceAll(m[1], "_", ".")
	}},
	{regexp.MustCompile(`(?i)iphone|ipad`), func(m []string, sig *Signature) {
		sig.OS = "iOS"
	}},
	{regexp.MustCompile(`(?i)android (\d+(?:\.\d+)*)`), func(m []string, sig *Signature) {
		sig.OS, sig.OSVersion = "Android", m[1]
	}},
	{regexp.MustCompile(`(?i)android`), func(m []string, sig *Signature) {
		sig.OS = "Android"
	}},
	{regexp.MustCompile(`(?i)windows nt (\d+\.\d+)`), func(m []string, sig *Signature) {
		sig.OS, sig.OSVersion = "Windows", windowsVersion(m[1])
	}},
	{regexp.MustCompile(`(?i)mac os x (\d+[._]\d+(?:[._]\d+)?)`), func(m []string, sig *Signature) {
		sig.OS, sig.OSVersion = "macOS", strings.ReplaceAll(m[1], "_", ".")
	}},
	{regexp.MustCompile(`(?i)cros`), func(m []string, sig *Signature) {
		sig.OS = "ChromeOS"
	}},
	{regexp.MustCompile(`(?i)linux`), func(m []string, sig *Signature) {
		sig.OS = "Linux"
	}},
}

// Browser rules: Edge and Opera embed "Chrome" in their UA, and everything
// WebKit-based embeds "Safari", so specificity order is load-bearing here.
var browserRules = []deviceRule{
	{regexp.MustCompile(`(?i)edg(?:e|a|ios)?/(\d+(?:\.\d+)*)`), func(m []string, sig *Signature) {
		sig.Browser, sig.BrowserVersion = "Edge", m[1]
	}},
	{regexp.MustCompile(`(?i)opr/(\d+(?:\.\d+)*)`), func(m []string, sig *Signature) {
		sig.Browser, sig.BrowserVersion = "Opera", m[1]
	}},
	{regexp.MustCompile(`(?i)samsungbrowser/(\d+(?:\.\d+)*)`), func(m []string, sig *Signature) {
		sig.Browser, sig.BrowserVersion = "Samsung Internet", m[1]
	}},
	{regexp.MustCompile(`(?i)firefox/(\d+(?:\.\d+)*)`), func(m []string, sig *Signature) {
		sig.Browser, sig.BrowserVersion = "Firefox", m[1]
	}},
	{regexp.MustCompile(`(?i)(?:crios|chrome)/(\d+(?:\.\d+)*)`), func(m []string, sig *Signature) {
		sig.Browser, sig.BrowserVersion = "Chrome", m[1]
	}},
	{regexp.MustCompile(`(?i)version/(\d+(?:\.\d+)*).*safari`), func(m []string, sig *Signature) {
		sig.Browser, sig.BrowserVersion = "Safari", m[1]
	}},
	{regexp.MustCompile(`(?i)safari`), func(m []string, sig *Signature) {
		sig.Browser = "Safari"
	}},
}

// DeriveSignature classifies user-agent text into a device signature.
// Unknown values default to "unknown"; unknown device type defaults to
// desktop.
func DeriveSignature(userAgent string) Signature {
	sig := Signature{
		Type:           TypeDesktop,
		Brand:          Unknown,
		Model:          Unknown,
		OS:             Unknown,
		OSVersion:      Unknown,
		Browser:        Unknown,
		BrowserVersion: Unknown,
	}
	if userAgent == "" {
		return sig
	}

	applyFirst(deviceRules, userAgent, &sig)
	applyFirst(osRules, userAgent, &sig)
	applyFirst(browserRules, userAgent, &sig)

	return sig
}

func applyFirst(rules []deviceRule, ua string, sig *Signature) {
	for _, r := range rules {
		if m := r.pattern.FindStringSubmatch(ua); m != nil {
			r.classify(m, sig)
			return
		}
	}
}

// windowsVersion maps NT kernel versions to marketing names.
func windowsVersion(nt string) string {
	switch nt {
	case "10.0":
		return "10"
	case "6.3":
		return "8.1"
	case "6.2":
		return "8"
	case "6.1":
		return "7"
	default:
		return nt
	}
}
