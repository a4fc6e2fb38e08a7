package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"strings"
)

// RefKind identifies how an ImageRef carries its bytes.
type RefKind int

const (
	// KindInline is a self-contained data URI ("data:<mime>;base64,<payload>").
	KindInline RefKind = iota
	// KindBlob is raw bytes held in memory.
	KindBlob
	// KindFile is a path to bytes on disk.
	KindFile
)

// String returns a short label for the kind.
func (k RefKind) String() string {
	switch k {
	case KindInline:
		return "inline"
	case KindBlob:
		return "blob"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// ErrNotInlineImage is returned by Decode when the reference is not an
// inline-encoded image. Callers treat it as "nothing to preprocess".
var ErrNotInlineImage = errors.New("image reference is not an inline-encoded image")

// ImageRef is an immutable handle to image bytes supplied by a caller.
//
// The zero value is an empty inline reference. Use Inline, Blob or File to
// construct one. An ImageRef never owns pixel data; decoding always produces
// a fresh PixelBuffer.
type ImageRef struct {
	kind RefKind
	uri  string
	data []byte
	path string
}

// Inline wraps a data URI such as "data:image/png;base64,iVBOR...".
func Inline(uri string) ImageRef {
	return ImageRef{kind: KindInline, uri: uri}
}

// Blob wraps raw bytes. The slice is not copied; callers must not mutate it
// while the reference is in use.
func Blob(data []byte) ImageRef {
	return ImageRef{kind: KindBlob, data: data}
}

// File references bytes stored at path.
func File(path string) ImageRef {
	return ImageRef{kind: KindFile, path: path}
}

// Kind reports how the reference carries its bytes.
func (r ImageRef) Kind() RefKind { return r.kind }

// URI returns the data URI of an inline reference, or "" for other kinds.
func (r ImageRef) URI() string { return r.uri }

// Path returns the file path of a file reference, or "" for other kinds.
func (r ImageRef) Path() string { return r.path }

// IsInlineImage reports whether the reference is a data URI whose media type
// is an image. Only such references are eligible for preprocessing.
func (r ImageRef) IsInlineImage() bool {
	if r.kind != KindInline {
		return false
	}
	const prefix = "data:image/"
	return len(r.uri) >= len(prefix) && strings.EqualFold(r.uri[:len(prefix)], prefix)
}

// Equal reports whether two references point at the same content.
func (r ImageRef) Equal(o ImageRef) bool {
	if r.kind != o.kind {
		return false
	}
	switch r.kind {
	case KindInline:
		return r.uri == o.uri
	case KindBlob:
		return bytes.Equal(r.data, o.data)
	default:
		return r.path == o.path
	}
}

// String returns a log-safe description; payloads are never included.
func (r ImageRef) String() string {
	switch r.kind {
	case KindInline:
		mime, _, _ := splitDataURI(r.uri)
		return fmt.Sprintf("inline(%s, %d chars)", mime, len(r.uri))
	case KindBlob:
		return fmt.Sprintf("blob(%d bytes)", len(r.data))
	default:
		return fmt.Sprintf("file(%s)", r.path)
	}
}

// Bytes resolves the reference to raw bytes and a MIME type.
//
// Inline references are base64-decoded (standard alphabet first, then the
// URL-safe one). The MIME type comes from the data URI header when present,
// otherwise it is sniffed from the bytes.
func (r ImageRef) Bytes() ([]byte, string, error) {
	switch r.kind {
	case KindInline:
		mime, payload, err := splitDataURI(r.uri)
		if err != nil {
			return nil, "", err
		}
		data, err := decodeBase64(payload)
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode base64 payload: %w", err)
		}
		return data, pickMIME(mime, data), nil
	case KindBlob:
		return r.data, pickMIME("", r.data), nil
	case KindFile:
		data, err := os.ReadFile(r.path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read image file: %w", err)
		}
		return data, pickMIME("", data), nil
	default:
		return nil, "", fmt.Errorf("unknown image reference kind %d", r.kind)
	}
}

// InlineFromBytes builds a data URI reference for data. An empty mime is
// sniffed from the content.
func InlineFromBytes(data []byte, mime string) ImageRef {
	mime = pickMIME(mime, data)
	return Inline("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// RefFromFile reads path and returns an inline reference when the content
// is an image, or a blob reference otherwise.
func RefFromFile(path string) (ImageRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImageRef{}, fmt.Errorf("failed to open image: %w", err)
	}
	mime := sniffMIME(data)
	if strings.HasPrefix(mime, "image/") {
		return InlineFromBytes(data, mime), nil
	}
	return Blob(data), nil
}

// sniffMIME detects the media type of data. Content sniffing knows no TIFF
// signature, so anything it does not call an image is retried against the
// registered image decoders.
func sniffMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if strings.HasPrefix(mime, "image/") {
		return mime
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		return "image/" + format
	}
	return mime
}

// splitDataURI returns the media type and payload of "data:<mime>;base64,<payload>".
func splitDataURI(uri string) (string, string, error) {
	s := strings.TrimSpace(uri)
	if len(s) < 5 || !strings.EqualFold(s[:5], "data:") {
		return "", "", fmt.Errorf("not a data URI")
	}
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return "", "", fmt.Errorf("data URI has no payload separator")
	}
	meta := s[len("data:"):idx]
	mime := meta
	if semi := strings.IndexByte(meta, ';'); semi >= 0 {
		mime = meta[:semi]
	}
	return strings.ToLower(mime), s[idx+1:], nil
}

func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// pickMIME prefers an explicit type and falls back to content sniffing.
func pickMIME(explicit string, data []byte) string {
	if m := strings.TrimSpace(explicit); m != "" {
		return m
	}
	if len(data) > 0 {
		return sniffMIME(data)
	}
	return "application/octet-stream"
}
