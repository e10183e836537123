// Package chunk splits file content into bounded, labeled retrieval units.
// Boundaries come from language-profile signature lines with a fixed-size
// fallback; no parser is involved. The output is advisory context for a
// language model, so precision is traded for zero per-language maintenance.
package chunk

import (
	"fmt"
	"strings"

	"github.com/codescout/codescout/internal/lang"
	"github.com/codescout/codescout/internal/token"
)

// signatureLabelMax caps labels taken from a defining line that had no
// identifier capture.
const signatureLabelMax = 50

// Chunk is one contiguous line range of a file treated as a retrieval unit.
// Within a file's chunk list, ranges are contiguous, non-overlapping,
// ascending, and cover exactly lines 1..N.
type Chunk struct {
	// FilePath is the absolute path of the source file.
	FilePath string `json:"filePath"`

	// RelativePath is the path relative to the index root.
	RelativePath string `json:"relativePath"`

	// StartLine and EndLine are 1-indexed and inclusive.
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`

	// Signature labels the chunk: a captured identifier, the head of the
	// defining line, or a synthetic "lines X-Y" for fallback windows.
	Signature string `json:"signature"`

	// Keywords is the sorted, deduplicated keyword set of Content.
	Keywords []string `json:"keywords"`

	// Content is the verbatim source text of the line range.
	Content string `json:"content"`

	// Hash is the 128-bit content fingerprint of Content.
	Hash string `json:"hash"`
}

// Key identifies a chunk for deduplication during scoring.
func (c *Chunk) Key() string {
	return fmt.Sprintf("%s:%d", c.FilePath, c.StartLine)
}

// Chunker splits file content into chunks.
type Chunker struct {
	threshold int
}

// New creates a Chunker with the given forced-boundary threshold.
// A non-positive threshold falls back to 50.
func New(threshold int) *Chunker {
	if threshold <= 0 {
		threshold = 50
	}
	return &Chunker{threshold: threshold}
}

// Threshold returns the configured forced-boundary line count.
func (c *Chunker) Threshold() int {
	return c.threshold
}

// Split chunks content using the profile's signature patterns.
// When no signature matches anywhere in the file (or profile is nil), the
// whole file is windowed into threshold-sized, range-labeled chunks instead.
func (c *Chunker) Split(absPath, relPath, content string, profile *lang.Profile) []*Chunk {
	lines := splitLines(content)
	if len(lines) == 0 {
		return nil
	}

	if profile == nil || !anySignature(lines, profile) {
		return c.windowed(absPath, relPath, lines)
	}
	return c.bySignatures(absPath, relPath, lines, profile)
}

// bySignatures runs the signature scan. A chunk opened by a signature line
// keeps that signature's label; lines ahead of the first signature (and
// continuations after a forced boundary) accumulate in an unlabeled chunk
// that is range-labeled at emit time.
func (c *Chunker) bySignatures(absPath, relPath string, lines []string, profile *lang.Profile) []*Chunk {
	var chunks []*Chunk

	openStart := 0 // 1-indexed; 0 means no open chunk
	openLabel := ""

	emit := func(endLine int) {
		chunks = append(chunks, c.build(absPath, relPath, lines, openStart, endLine, openLabel))
		openStart = 0
		openLabel = ""
	}

	for i, line := range lines {
		lineNo := i + 1

		if id, ok := profile.MatchSignature(line); ok {
			if openStart != 0 {
				emit(lineNo - 1)
			}
			openStart = lineNo
			openLabel = signatureLabel(id, line)
			continue
		}

		if openStart == 0 {
			openStart = lineNo
		}
		if lineNo-openStart+1 >= c.threshold {
			emit(lineNo)
		}
	}

	if openStart != 0 {
		emit(len(lines))
	}

	return chunks
}

// windowed emits fixed-size windows labeled by their line ranges.
func (c *Chunker) windowed(absPath, relPath string, lines []string) []*Chunk {
	var chunks []*Chunk
	for start := 1; start <= len(lines); start += c.threshold {
		end := start + c.threshold - 1
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, c.build(absPath, relPath, lines, start, end, ""))
	}
	return chunks
}

// build assembles a chunk for lines [startLine, endLine]. An empty label
// becomes the synthetic line-range label.
func (c *Chunker) build(absPath, relPath string, lines []string, startLine, endLine int, label string) *Chunk {
	content := strings.Join(lines[startLine-1:endLine], "\n")
	if label == "" {
		label = rangeLabel(startLine, endLine)
	}
	return &Chunk{
		FilePath:     absPath,
		RelativePath: relPath,
		StartLine:    startLine,
		EndLine:      endLine,
		Signature:    label,
		Keywords:     token.ExtractKeywords(content),
		Content:      content,
		Hash:         token.FingerprintString(content),
	}
}

// anySignature reports whether any line matches a signature pattern.
func anySignature(lines []string, profile *lang.Profile) bool {
	for _, line := range lines {
		if _, ok := profile.MatchSignature(line); ok {
			return true
		}
	}
	return false
}

// signatureLabel prefers the captured identifier, else the head of the
// defining line.
func signatureLabel(id, line string) string {
	if id != "" {
		return id
	}
	line = strings.TrimSpace(line)
	if len(line) > signatureLabelMax {
		return line[:signatureLabelMax]
	}
	return line
}

func rangeLabel(startLine, endLine int) string {
	return fmt.Sprintf("lines %d-%d", startLine, endLine)
}

// splitLines splits content on newlines, dropping the phantom empty element
// a trailing newline produces so an N-line file yields exactly N lines.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
