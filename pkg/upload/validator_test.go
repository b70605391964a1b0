package upload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pdfBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, "%PDF-1.7\n")
	for i := 9; i < size; i++ {
		data[i] = ' '
	}
	return data
}

func TestValidateAcceptsCleanPDF(t *testing.T) {
	v := NewValidator(DefaultRules())
	c := CandidateFromBytes("contract.pdf", MimePDF, pdfBytes(2*1000*1000))

	verdict := v.Validate(c)

	assert.True(t, verdict.IsValid)
	assert.Empty(t, verdict.Errors)
	assert.Same(t, c, verdict.Sanitized)
}

func TestValidateSizeBoundary(t *testing.T) {
	v := NewValidator(DefaultRules())

	exact := NewCandidate([16]byte{1}, "limit.pdf", MimePDF, DefaultMaxFileSizeBytes, nil)
	assert.True(t, v.Validate(exact).IsValid)

	over := NewCandidate([16]byte{2}, "limit.pdf", MimePDF, DefaultMaxFileSizeBytes+1, nil)
	verdict := v.Validate(over)
	require.False(t, verdict.IsValid)
	require.Len(t, verdict.Errors, 1)
	assert.Contains(t, verdict.Errors[0], "exceeds the maximum")
	assert.Nil(t, verdict.Sanitized)
}

func TestValidateRejectsExecutable(t *testing.T) {
	v := NewValidator(DefaultRules())
	c := CandidateFromBytes("resume.exe", "application/x-executable", make([]byte, 1024))

	verdict := v.Validate(c)

	require.False(t, verdict.IsValid)
	assert.Contains(t, strings.Join(verdict.Errors, "\n"), `".exe"`)
}

func TestValidateCatchesSpoofedMime(t *testing.T) {
	v := NewValidator(DefaultRules())
	c := CandidateFromBytes("invoice.PDF.JS", MimePDF, []byte("%PDF"))

	verdict := v.Validate(c)

	require.False(t, verdict.IsValid)
	assert.Equal(t, []string{`file extension ".js" is not allowed`}, verdict.Errors)
}

func TestValidatePathTraversalName(t *testing.T) {
	v := NewValidator(DefaultRules())
	c := CandidateFromBytes(`a..\b.docx`, MimeDocx, []byte("PK\x03\x04"))

	verdict := v.Validate(c)

	require.False(t, verdict.IsValid)
	assert.Contains(t, verdict.Errors, "filename contains path traversal sequences")
}

func TestValidateCollectsAllErrors(t *testing.T) {
	v := NewValidator(DefaultRules())
	c := NewCandidate([16]byte{3}, "../evil<1>.bat", "application/octet-stream", DefaultMaxFileSizeBytes*2, nil)

	verdict := v.Validate(c)

	require.False(t, verdict.IsValid)
	assert.Len(t, verdict.Errors, 5)
	assert.Contains(t, verdict.Errors[0], "exceeds the maximum")
	assert.Contains(t, verdict.Errors[1], "file type")
	assert.Contains(t, verdict.Errors[2], ".bat")
	assert.Equal(t, "filename contains path traversal sequences", verdict.Errors[3])
	assert.Equal(t, "filename contains reserved characters", verdict.Errors[4])
}

func TestValidateIsDeterministic(t *testing.T) {
	v := NewValidator(DefaultRules())
	for _, c := range []*Candidate{
		CandidateFromBytes("contract.pdf", MimePDF, pdfBytes(64)),
		CandidateFromBytes("resume.exe", "application/x-executable", []byte("MZ")),
	} {
		assert.Equal(t, v.Validate(c), v.Validate(c))
	}
}

func TestValidateMimeAllowlistIsExact(t *testing.T) {
	v := NewValidator(DefaultRules())
	for _, mime := range []string{"application/pdf; charset=binary", "APPLICATION/PDF", "text/*", ""} {
		verdict := v.Validate(CandidateFromBytes("a.pdf", mime, []byte("%PDF")))
		assert.False(t, verdict.IsValid, mime)
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name string
		file string
		want []string
	}{
		{"clean", "FAR 52.204-21 clause.docx", nil},
		{"empty", "  ", []string{"filename is required"}},
		{"nul", "a\x00.pdf", []string{"filename contains a null byte"}},
		{"slash", "dir/file.pdf", []string{"filename contains path traversal sequences", "filename contains reserved characters"}},
		{"control", "tab\there.pdf", []string{"filename contains control characters"}},
		{"reserved", "what?.pdf", []string{"filename contains reserved characters"}},
		{"too long", strings.Repeat("a", 252) + ".pdf", []string{"filename exceeds 255 characters"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateFilename(tt.file, DefaultMaxFilenameLength))
		})
	}
}

func TestValidateBatch(t *testing.T) {
	rules := DefaultRules()
	rules.MaxFiles = 2
	v := NewValidator(rules)

	one := CandidateFromBytes("a.txt", MimeTextPlain, []byte("a"))
	assert.NoError(t, v.ValidateBatch([]*Candidate{one, one}))
	assert.Error(t, v.ValidateBatch([]*Candidate{one, one, one}))
	assert.Error(t, v.ValidateBatch(nil))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".pdf", Extension("Contract.PDF"))
	assert.Equal(t, ".gz", Extension("archive.tar.gz"))
	assert.Equal(t, "", Extension("README"))
	assert.Equal(t, "", Extension(`dir.d\README`))
}
