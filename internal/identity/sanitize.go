package identity

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultImage = "/logo.png"
	DefaultBio   = "I am a freshman here"

	maxUsername = 32
	maxName     = 64
	maxBio      = 300
)

var (
	emailPattern    = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.[a-zA-Z]{2,}$`)
	usernameStrip   = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	nameStrip       = regexp.MustCompile(`[^\p{L}\p{N} _-]`)
	bioAngleBracket = regexp.MustCompile(`[<>]`)
)

// SanitizeEmail trims and lowercases email, returning "" when it fails the structural check.
func SanitizeEmail(email string) string {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(trimmed) {
		return ""
	}
	return trimmed
}

func SanitizeUsername(username string) string {
	return truncate(usernameStrip.ReplaceAllString(strings.TrimSpace(username), ""), maxUsername)
}

func SanitizeName(name string) string {
	return truncate(nameStrip.ReplaceAllString(strings.TrimSpace(name), ""), maxName)
}

// SanitizeImage accepts absolute URLs and site paths; anything else becomes the default avatar.
func SanitizeImage(image string) string {
	if strings.HasPrefix(image, "http") || strings.HasPrefix(image, "/") {
		return image
	}
	return DefaultImage
}

func SanitizeBio(bio string) string {
	return truncate(bioAngleBracket.ReplaceAllString(strings.TrimSpace(bio), ""), maxBio)
}

// FallbackUsername synthesizes a username from the last six digits of the unix millisecond clock.
func FallbackUsername(now time.Time) string {
	return fmt.Sprintf("user_%06d", now.UnixMilli()%1_000_000)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
