// Package analytics counts post views without storing personal data. A
// visitor is a salted hash of IP and User-Agent, and each visitor counts once
// per post per day.
package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned for missing settings.
var ErrNotFound = errors.New("analytics: not found")

const saltKey = "hash_salt"

// loadSalt reads the installation salt, generating and persisting one on
// first use.
func loadSalt(store *Store) (string, error) {
	s, err := store.GetSetting(saltKey)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("read hash salt: %w", err)
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	s = hex.EncodeToString(b)
	if err := store.SetSetting(saltKey, s); err != nil {
		return "", fmt.Errorf("store hash salt: %w", err)
	}
	return s, nil
}

// visitorID creates a salted visitor ID from IP and User-Agent.
func visitorID(salt, ip, userAgent string) string {
	h := sha256.New()
	h.Write([]byte(salt + ip + "|" + userAgent))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ParseUserAgent extracts browser, OS, and device from User-Agent string.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)

	// order matters: Edge and Opera UAs also contain "chrome"
	switch {
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr/"):
		browser = "Opera"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	// Android before Linux
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	// iPad UAs contain "mobile"
	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		device = "Tablet"
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}

	return
}

var botMarkers = []string{
	"bot", "crawler", "spider", "crawl", "slurp", "scrape",
	"yandex", "baidu", "facebookexternalhit", "headless",
	"curl/", "wget/", "python-requests", "go-http-client",
}

// IsBot checks if the User-Agent is likely a bot, crawler or script. An
// empty User-Agent counts as a bot.
func IsBot(ua string) bool {
	ua = strings.ToLower(strings.TrimSpace(ua))
	if ua == "" {
		return true
	}
	for _, marker := range botMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}
