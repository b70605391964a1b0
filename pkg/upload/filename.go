package upload

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const maxSafeBaseLength = 50

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// GenerateSafeFilename keeps [A-Za-z0-9_-] from the base name, truncates it to
// 50 characters and appends _<unix millis> plus the original extension as-is.
// Uniqueness relies on the millisecond timestamp only.
func GenerateSafeFilename(originalName string, now time.Time) string {
	base, ext := originalName, ""
	if i := strings.LastIndexByte(originalName, '.'); i >= 0 {
		base, ext = originalName[:i], originalName[i:]
	}

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	if len(base) > maxSafeBaseLength {
		base = base[:maxSafeBaseLength]
	}

	return fmt.Sprintf("%s_%d%s", base, now.UnixMilli(), ext)
}
