// Package encoding detects character encodings and converts document bytes
// to UTF-8, and spots binary content that must never be line-processed.
package encoding

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

const (
	// sniffLen is the number of bytes used by http.DetectContentType.
	sniffLen = 512
	// checkLen is the buffer size used for null byte checks.
	checkLen = 1024
	// nullThreshold is the null-byte fraction above which content is binary.
	nullThreshold = 0.15
)

// Handler detects character encoding, converts content to UTF-8, and detects
// binary files.
type Handler interface {
	// DetectAndDecode attempts to detect the encoding of content and convert
	// it to UTF-8. It returns the UTF-8 bytes, the detected encoding name
	// (IANA), whether detection was certain, and any conversion error. The
	// configured fallback encoding is used when detection is uncertain.
	DetectAndDecode(content []byte) (utf8Content []byte, detectedEncoding string, certain bool, err error)

	// IsBinary reports whether content is likely binary, based on MIME
	// sniffing of the first 512 bytes and the null-byte fraction of the
	// first 1024 bytes.
	IsBinary(content []byte) bool
}

// charsetHandler implements Handler using golang.org/x/net/html/charset.
type charsetHandler struct {
	fallback string
}

// NewCharsetHandler creates a Handler. fallback names the encoding assumed
// when detection is uncertain; empty means keep the uncertain guess.
func NewCharsetHandler(fallback string) Handler {
	return &charsetHandler{fallback: fallback}
}

// DetectAndDecode implements the Handler interface.
func (h *charsetHandler) DetectAndDecode(content []byte) ([]byte, string, bool, error) {
	enc, name, certain := charset.DetermineEncoding(content, "")

	if !certain && h.fallback != "" {
		if fallbackEnc, fallbackName := charset.Lookup(h.fallback); fallbackEnc != nil {
			enc = fallbackEnc
			name = fallbackName
			certain = true
		}
	}

	if enc == nil {
		if name == "" {
			name = "utf-8"
		}
		return content, name, certain, nil
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(content), enc.NewDecoder()))
	if err != nil {
		if name == "" {
			name = "unknown"
		}
		return content, name, certain, fmt.Errorf("failed to convert from %q: %w", name, err)
	}
	if name == "" {
		name = "unknown"
	}
	return decoded, name, certain, nil
}

// IsBinary implements the Handler interface.
func (h *charsetHandler) IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}

	limit := min(len(content), sniffLen)
	if !isTextMIME(http.DetectContentType(content[:limit])) {
		return true
	}

	limit = min(len(content), checkLen)
	nulls := bytes.Count(content[:limit], []byte{0x00})
	return float64(nulls)/float64(limit) > nullThreshold
}

// isTextMIME reports whether a sniffed content type is plausibly text.
// octet-stream is allowed through and left to the null-byte check.
func isTextMIME(contentType string) bool {
	mime := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	switch {
	case strings.HasPrefix(mime, "text/"):
		return true
	case mime == "application/json", mime == "application/xml",
		mime == "application/yaml", mime == "application/toml",
		mime == "application/markdown", mime == "image/svg+xml":
		return true
	case strings.HasSuffix(mime, "+xml"), strings.HasSuffix(mime, "+json"):
		return true
	case mime == "application/octet-stream":
		return true
	}
	return false
}
