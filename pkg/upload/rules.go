// Package upload inspects a file before it is accepted into the document
// pipeline: structural validation first, then content/signature scanning.
package upload

import (
	"regexp"
	"strings"
)

const (
	MiB = 1 << 20

	DefaultMaxFileSizeBytes  = 10 * MiB
	DefaultMaxFiles          = 10
	DefaultMaxFilenameLength = 255
	// Unreadable files below this size are let through, at or above it they
	// are rejected.
	DefaultFailOpenBelowBytes = 1 * MiB
	DefaultPaddingRatio       = 3
)

const (
	MimePDF       = "application/pdf"
	MimeDoc       = "application/msword"
	MimeDocx      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTextPlain = "text/plain"
	MimeCSV       = "text/csv"
	MimeXls       = "application/vnd.ms-excel"
	MimeXlsx      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Signature is a magic number, matched either at offset 0 or anywhere in the
// buffer depending on which table it sits in.
type Signature struct {
	Name  string
	Magic []byte
}

// ThreatPattern is one entry of the ordered text scanning table.
type ThreatPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// Rules holds every table the validator and scanner consult. Callers own their
// copy; nothing here is shared mutable state.
type Rules struct {
	MaxFileSizeBytes    int64
	MaxFiles            int
	MaxFilenameLength   int
	AllowedMimeTypes    []string
	BinaryMimeTypes     []string
	DangerousExtensions []string

	// LeadingSignatures must match the start of a binary upload.
	LeadingSignatures []Signature
	// ExecutableSignatures must not appear anywhere in a binary upload.
	ExecutableSignatures []Signature
	ThreatPatterns       []ThreatPattern

	PaddingRatio       int64
	FailOpenBelowBytes int64
}

// DefaultRules returns a fresh copy of the built-in tables.
func DefaultRules() Rules {
	return Rules{
		MaxFileSizeBytes:  DefaultMaxFileSizeBytes,
		MaxFiles:          DefaultMaxFiles,
		MaxFilenameLength: DefaultMaxFilenameLength,
		AllowedMimeTypes: []string{
			MimePDF,
			MimeDoc,
			MimeDocx,
			MimeTextPlain,
			MimeCSV,
			MimeXls,
			MimeXlsx,
		},
		BinaryMimeTypes: []string{MimePDF, MimeDoc, MimeDocx, MimeXls, MimeXlsx},
		DangerousExtensions: []string{
			".exe", ".bat", ".cmd", ".com", ".pif", ".scr",
			".vbs", ".js", ".jar", ".php", ".asp", ".jsp",
		},
		LeadingSignatures: []Signature{
			{Name: "pdf", Magic: []byte("%PDF")},
			{Name: "zip", Magic: []byte{0x50, 0x4B, 0x03, 0x04}},
			{Name: "ole", Magic: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
		},
		ExecutableSignatures: []Signature{
			{Name: "pe", Magic: []byte("MZ")},
			{Name: "elf", Magic: []byte{0x7F, 'E', 'L', 'F'}},
			{Name: "macho32", Magic: []byte{0xFE, 0xED, 0xFA, 0xCE}},
			{Name: "macho64", Magic: []byte{0xFE, 0xED, 0xFA, 0xCF}},
			{Name: "macho32-le", Magic: []byte{0xCE, 0xFA, 0xED, 0xFE}},
			{Name: "macho64-le", Magic: []byte{0xCF, 0xFA, 0xED, 0xFE}},
			{Name: "macho-fat", Magic: []byte{0xCA, 0xFE, 0xBA, 0xBE}},
		},
		ThreatPatterns:     defaultThreatPatterns(),
		PaddingRatio:       DefaultPaddingRatio,
		FailOpenBelowBytes: DefaultFailOpenBelowBytes,
	}
}

func defaultThreatPatterns() []ThreatPattern {
	return []ThreatPattern{
		{Name: "script_tag", Pattern: regexp.MustCompile(`(?i)<\s*script\b`)},
		{Name: "javascript_uri", Pattern: regexp.MustCompile(`(?i)javascript\s*:`)},
		{Name: "vbscript_uri", Pattern: regexp.MustCompile(`(?i)vbscript\s*:`)},
		{Name: "event_handler", Pattern: regexp.MustCompile(`(?i)<[^>]*\bon[a-z]+\s*=`)},
		{Name: "embedded_frame", Pattern: regexp.MustCompile(`(?i)<\s*(iframe|object|embed|form)\b`)},
		{Name: "data_html_uri", Pattern: regexp.MustCompile(`(?i)data:text/html`)},
		{Name: "eval_call", Pattern: regexp.MustCompile(`(?i)\beval\s*\(`)},
		{Name: "document_write", Pattern: regexp.MustCompile(`(?i)document\.write`)},
		{Name: "window_location", Pattern: regexp.MustCompile(`(?i)window\.location`)},
		{Name: "encoded_script", Pattern: regexp.MustCompile(`(?i)%3C\s*script`)},
		{Name: "path_traversal", Pattern: regexp.MustCompile(`\.\.[/\\]`)},
		{Name: "nul_byte", Pattern: regexp.MustCompile(`\x00`)},
		{Name: "xml_external_entity", Pattern: regexp.MustCompile(`(?i)<!ENTITY`)},
		{Name: "template_interpolation", Pattern: regexp.MustCompile(`\$\{[^}]*\}`)},
		{Name: "command_exec", Pattern: regexp.MustCompile(`(?i)\b(exec|system)\s*\(`)},
	}
}

func (r Rules) mimeAllowed(mime string) bool {
	return containsExact(r.AllowedMimeTypes, mime)
}

func (r Rules) isBinary(mime string) bool {
	return containsExact(r.BinaryMimeTypes, mime)
}

func (r Rules) extensionDangerous(ext string) bool {
	return ext != "" && containsExact(r.DangerousExtensions, strings.ToLower(ext))
}

func containsExact(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
