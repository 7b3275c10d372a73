// Package objectkey derives content-addressed object names for uploads and
// maps names back to content types.
package objectkey

import (
	"crypto/sha256"
	"encoding/base64"
	"path"
	"strings"
)

// Digest returns the SHA-256 of data encoded as unpadded URL-safe base64.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Extension returns the text after the last "." of filename. A filename
// without a dot is its own extension and a trailing dot yields "". Anything up
// to a path separator inside that text is dropped so the result is always a
// flat name component.
func Extension(filename string) string {
	ext := filename[strings.LastIndexByte(filename, '.')+1:]
	if idx := strings.LastIndexAny(ext, `/\`); idx >= 0 {
		ext = ext[idx+1:]
	}
	return ext
}

// Name returns the stored name for data uploaded as filename:
// <digest>.<extension>. The dot is always present, so "cover" is stored as
// <digest>.cover and "cover." as <digest>.
func Name(data []byte, filename string) string {
	return Digest(data) + "." + Extension(filename)
}

// ContentType infers a content type from the extension of name alone.
func ContentType(name string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// Valid reports whether name is a single flat object name.
func Valid(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
