package upload

import (
	"fmt"
	"strings"
	"unicode"
)

// Verdict is the structural validation result for one candidate. Errors is
// empty iff IsValid, and Sanitized is only set when valid.
type Verdict struct {
	IsValid   bool
	Errors    []string
	Sanitized *Candidate
}

type Validator struct {
	rules Rules
}

func NewValidator(rules Rules) *Validator {
	return &Validator{rules: rules}
}

func (v *Validator) Rules() Rules {
	return v.rules
}

// Validate runs every structural check and reports all failures, in order:
// size, MIME type, extension, filename. The candidate is never modified.
func (v *Validator) Validate(c *Candidate) Verdict {
	if c == nil {
		return Verdict{Errors: []string{"no file provided"}}
	}

	var errs []string

	if c.SizeBytes < 0 {
		errs = append(errs, "file size is invalid")
	} else if c.SizeBytes > v.rules.MaxFileSizeBytes {
		errs = append(errs, fmt.Sprintf("file size %d bytes exceeds the maximum of %d bytes", c.SizeBytes, v.rules.MaxFileSizeBytes))
	}

	if !v.rules.mimeAllowed(c.MimeType) {
		errs = append(errs, fmt.Sprintf("file type %q is not allowed", c.MimeType))
	}

	// Checked even when the MIME type passed: a renamed executable can carry a
	// spoofed type.
	if ext := Extension(c.Name); v.rules.extensionDangerous(ext) {
		errs = append(errs, fmt.Sprintf("file extension %q is not allowed", ext))
	}

	errs = append(errs, ValidateFilename(c.Name, v.rules.MaxFilenameLength)...)

	if len(errs) > 0 {
		return Verdict{Errors: errs}
	}
	return Verdict{IsValid: true, Errors: []string{}, Sanitized: c}
}

// ValidateBatch rejects a batch larger than MaxFiles.
func (v *Validator) ValidateBatch(candidates []*Candidate) error {
	if len(candidates) == 0 {
		return fmt.Errorf("no files provided")
	}
	if v.rules.MaxFiles > 0 && len(candidates) > v.rules.MaxFiles {
		return fmt.Errorf("too many files: %d provided, at most %d allowed", len(candidates), v.rules.MaxFiles)
	}
	return nil
}

const reservedFilenameChars = `<>:"/\|?*`

// ValidateFilename returns one message per distinct problem with name.
func ValidateFilename(name string, maxLength int) []string {
	var errs []string

	if strings.TrimSpace(name) == "" {
		return []string{"filename is required"}
	}
	if strings.ContainsRune(name, 0) {
		errs = append(errs, "filename contains a null byte")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		errs = append(errs, "filename contains path traversal sequences")
	}
	if maxLength > 0 && len(name) > maxLength {
		errs = append(errs, fmt.Sprintf("filename exceeds %d characters", maxLength))
	}

	hasControl := false
	for _, r := range name {
		if r != 0 && unicode.IsControl(r) {
			hasControl = true
			break
		}
	}
	if hasControl {
		errs = append(errs, "filename contains control characters")
	}
	if strings.ContainsAny(name, reservedFilenameChars) {
		errs = append(errs, "filename contains reserved characters")
	}

	return errs
}

// Extension returns the lowercase extension including the dot, or "" when the
// final path element has none.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	ext := name[i:]
	if strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return strings.ToLower(ext)
}
