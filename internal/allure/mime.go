package allure

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"
)

const (
	unknownExtension = "unknown"

	// MediaTypeOctetStream is used when a file's type cannot be guessed.
	MediaTypeOctetStream = "application/octet-stream"
)

// preferredExtensions pins the extension for common media types;
// mime.ExtensionsByType depends on the host's mime.types files and returns
// candidates in lexical order (".asc" before ".txt").
var preferredExtensions = map[string]string{
	"text/plain":               "txt",
	"text/html":                "html",
	"text/csv":                 "csv",
	"text/xml":                 "xml",
	"text/uri-list":            "uri",
	"application/json":         "json",
	"application/xml":          "xml",
	"application/yaml":         "yaml",
	"application/x-yaml":       "yaml",
	"application/pdf":          "pdf",
	"application/zip":          "zip",
	"application/octet-stream": "bin",
	"image/png":                "png",
	"image/jpeg":               "jpg",
	"image/gif":                "gif",
	"image/svg+xml":            "svg",
	"image/webp":               "webp",
	"video/mp4":                "mp4",
	"video/webm":               "webm",
}

// ExtensionForType returns the file extension (without dot) for a media
// type, or "unknown" when none is known. Parameters such as charset are
// ignored.
func ExtensionForType(mediaType string) string {
	base, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return unknownExtension
	}
	if ext, ok := preferredExtensions[base]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(base)
	if err != nil || len(exts) == 0 {
		return unknownExtension
	}
	return strings.TrimPrefix(exts[0], ".")
}

// ValidMediaType reports whether mediaType parses as a media type.
func ValidMediaType(mediaType string) bool {
	_, _, err := mime.ParseMediaType(mediaType)
	return err == nil
}

var typesByExtension = map[string]string{
	"txt":  "text/plain",
	"log":  "text/plain",
	"html": "text/html",
	"htm":  "text/html",
	"csv":  "text/csv",
	"json": "application/json",
	"xml":  "application/xml",
	"yaml": "application/yaml",
	"yml":  "application/yaml",
	"pdf":  "application/pdf",
	"zip":  "application/zip",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"mp4":  "video/mp4",
	"webm": "video/webm",
}

// TypeForPath guesses the media type of a file from its extension.
func TypeForPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return MediaTypeOctetStream
	}
	if t, ok := typesByExtension[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension("." + ext); t != "" {
		return t
	}
	return MediaTypeOctetStream
}

// ExtensionForPath returns the extension of path without the dot, or
// "unknown" when it has none.
func ExtensionForPath(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return unknownExtension
	}
	return ext
}

var (
	pngMagic  = []byte("\x89PNG")
	jpegMagic = []byte("\xff\xd8\xff")
)

// DetectImageType sniffs PNG and JPEG headers. Anything else is reported as PNG.
func DetectImageType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return "image/png"
	case bytes.HasPrefix(data, jpegMagic):
		return "image/jpeg"
	default:
		return "image/png"
	}
}
