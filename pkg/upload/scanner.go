package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"
)

// ScanResult reports whether content is safe to store. Safe == true means the
// file passed; it never means "threat found".
type ScanResult struct {
	Safe bool
	// Reason names the first rule that failed, empty when Safe.
	Reason string
	// Indeterminate is set when the bytes could not be read; Safe then follows
	// the size split in Rules.FailOpenBelowBytes.
	Indeterminate bool
}

type Scanner struct {
	rules Rules
}

func NewScanner(rules Rules) *Scanner {
	return &Scanner{rules: rules}
}

// Scan reads the candidate and checks its content. The only error returned is
// ctx's, when the caller abandons the scan; every other outcome is a result.
func (s *Scanner) Scan(ctx context.Context, c *Candidate) (ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return ScanResult{}, err
	}

	data, readErr := s.read(c)

	if err := ctx.Err(); err != nil {
		return ScanResult{}, err
	}
	if readErr != nil {
		return s.indeterminate(c, readErr), nil
	}

	return s.inspect(c, data), nil
}

// read converts a panicking reader into an error so the size split applies.
func (s *Scanner) read(c *Candidate) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reader panicked: %v", r)
		}
	}()

	if c == nil || c.Open == nil {
		return nil, fmt.Errorf("no content source")
	}
	rc, err := c.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	limit := s.rules.MaxFileSizeBytes
	if c.SizeBytes > limit {
		limit = c.SizeBytes
	}
	return io.ReadAll(io.LimitReader(rc, limit+1))
}

// indeterminate is deliberately asymmetric: a small unreadable file cannot be
// shown to be dangerous and is allowed, a large one cannot be shown to be safe
// and is rejected.
func (s *Scanner) indeterminate(c *Candidate, cause error) ScanResult {
	var size int64
	if c != nil {
		size = c.SizeBytes
	}
	if size < s.rules.FailOpenBelowBytes {
		return ScanResult{Safe: true, Indeterminate: true}
	}
	return ScanResult{Safe: false, Indeterminate: true, Reason: fmt.Sprintf("content could not be read: %v", cause)}
}

func (s *Scanner) inspect(c *Candidate, data []byte) ScanResult {
	if int64(len(data)) > s.rules.MaxFileSizeBytes {
		return ScanResult{Reason: "content exceeds the maximum file size"}
	}

	if s.rules.isBinary(c.MimeType) {
		if r := s.inspectBinary(data); !r.Safe {
			return r
		}
	} else if r := s.inspectText(data); !r.Safe {
		return r
	}

	return s.inspectPadding(c, data)
}

func (s *Scanner) inspectBinary(data []byte) ScanResult {
	recognized := false
	for _, sig := range s.rules.LeadingSignatures {
		if bytes.HasPrefix(data, sig.Magic) {
			recognized = true
			break
		}
	}
	if !recognized {
		return ScanResult{Reason: "unrecognized file signature"}
	}

	for _, sig := range s.rules.ExecutableSignatures {
		if bytes.Contains(data, sig.Magic) {
			return ScanResult{Reason: fmt.Sprintf("embedded executable signature (%s)", sig.Name)}
		}
	}
	return ScanResult{Safe: true}
}

func (s *Scanner) inspectText(data []byte) ScanResult {
	text := strings.ToValidUTF8(string(data), "�")
	for _, tp := range s.rules.ThreatPatterns {
		if tp.Pattern.MatchString(text) {
			return ScanResult{Reason: fmt.Sprintf("suspicious content pattern (%s)", tp.Name)}
		}
	}
	return ScanResult{Safe: true}
}

// decodedLength counts UTF-16 code units of the decoded text, so characters
// outside the BMP count as two. Invalid bytes decode to U+FFFD and count as one.
func decodedLength(data []byte) int64 {
	var n int64
	for _, r := range string(data) {
		n += int64(utf16.RuneLen(r))
	}
	return n
}

// inspectPadding flags a declared size far larger than the decoded content.
func (s *Scanner) inspectPadding(c *Candidate, data []byte) ScanResult {
	if s.rules.PaddingRatio <= 0 {
		return ScanResult{Safe: true}
	}
	rawSize := c.SizeBytes
	if n := int64(len(data)); n > rawSize {
		rawSize = n
	}
	textSize := decodedLength(data)
	if rawSize > textSize*s.rules.PaddingRatio {
		return ScanResult{Reason: "file size does not match its content"}
	}
	return ScanResult{Safe: true}
}
