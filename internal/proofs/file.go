package proofs

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/angelmondragon/leadfunnel-backend/pkg/errors"
)

// DefaultMaxBytes is the upload ceiling used when none is configured.
const DefaultMaxBytes int64 = 5 * 1024 * 1024

const dataURIPrefix = "data:"
const base64Marker = ";base64"

var allowedContentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"application/pdf",
}

// File is an uploaded payment receipt.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// AllowedContentTypes lists the MIME types accepted as payment proof.
func AllowedContentTypes() []string {
	out := make([]string, len(allowedContentTypes))
	copy(out, allowedContentTypes)
	return out
}

func isAllowed(contentType string) bool {
	for _, candidate := range allowedContentTypes {
		if candidate == contentType {
			return true
		}
	}
	return false
}

// Validate checks the proof against the allow-list and size ceiling and
// returns the normalized content type. When a content type is declared the
// sniffed bytes must agree with it.
func Validate(file File, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(file.Data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payment proof is required")
	}
	if int64(len(file.Data)) > maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payment proof exceeds size limit").
			WithDetails(map[string]any{"max_bytes": maxBytes, "size": len(file.Data)})
	}

	detected := mimetype.Detect(file.Data)
	declared := normalizeContentType(file.ContentType)
	if declared == "" {
		declared = normalizeContentType(detected.String())
	}
	if !isAllowed(declared) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payment proof must be JPG, PNG, WEBP or PDF").
			WithDetails(map[string]any{"content_type": declared, "allowed": AllowedContentTypes()})
	}
	if !detected.Is(declared) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payment proof content does not match its type").
			WithDetails(map[string]any{"declared": declared, "detected": detected.String()})
	}
	return declared, nil
}

func normalizeContentType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(value)
	}
	return parsed
}

// EncodeDataURI renders data as data:<contentType>;base64,<payload>.
func EncodeDataURI(contentType string, data []byte) string {
	return dataURIPrefix + contentType + base64Marker + "," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI parses a value produced by EncodeDataURI.
func DecodeDataURI(value string) (File, error) {
	if !strings.HasPrefix(value, dataURIPrefix) {
		return File{}, fmt.Errorf("data uri: missing %q prefix", dataURIPrefix)
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(value, dataURIPrefix), ",")
	if !ok {
		return File{}, fmt.Errorf("data uri: missing payload separator")
	}
	if !strings.HasSuffix(header, base64Marker) {
		return File{}, fmt.Errorf("data uri: only base64 payloads are supported")
	}
	contentType := strings.TrimSuffix(header, base64Marker)
	if contentType == "" {
		return File{}, fmt.Errorf("data uri: missing content type")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return File{}, fmt.Errorf("data uri: %w", err)
	}
	return File{ContentType: contentType, Data: data}, nil
}
