package storage

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const ImagePrefix = "visa-images"

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeName replaces every character outside [A-Za-z0-9.-] with '_'.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "upload"
	}
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// NewKey returns "<prefix>/<unix-millis>-<token>-<sanitized name>".
func NewKey(prefix, filename string) string {
	return keyAt(prefix, filename, time.Now(), randomToken())
}

func keyAt(prefix, filename string, now time.Time, token string) string {
	var b strings.Builder
	if prefix != "" {
		b.WriteString(strings.TrimSuffix(prefix, "/"))
		b.WriteByte('/')
	}
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte('-')
	b.WriteString(token)
	b.WriteByte('-')
	b.WriteString(SanitizeName(filename))
	return b.String()
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
