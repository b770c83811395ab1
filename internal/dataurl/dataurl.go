// Package dataurl encodes binary payloads as RFC 2397 data URLs, the form in
// which media and profile pictures are stored.
package dataurl

import (
	"encoding/base64"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	prefix = "data:"
	marker = ";base64,"
)

// ErrMalformed is returned by Decode for anything that is not a base64 data URL.
var ErrMalformed = errors.New("malformed data url")

// Encode returns data:<mime>;base64,<payload>.
func Encode(mimeType string, data []byte) string {
	var b strings.Builder
	b.Grow(len(prefix) + len(mimeType) + len(marker) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(prefix)
	b.WriteString(mimeType)
	b.WriteString(marker)
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// Decode splits a base64 data URL into its MIME type and payload.
func Decode(s string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok {
		return "", nil, ErrMalformed
	}
	mimeType, payload, ok := strings.Cut(rest, marker)
	if !ok {
		return "", nil, ErrMalformed
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Join(ErrMalformed, err)
	}
	return mimeType, data, nil
}

// media extensions missing from the builtin table on hosts without mime.types.
var extra = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".ogv":  "video/ogg",
	".heic": "image/heic",
	".bmp":  "image/bmp",
}

// Sniff guesses the MIME type from the file extension, then from content.
// Parameters such as charset are dropped.
func Sniff(name string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	t := mime.TypeByExtension(ext)
	if t == "" {
		t = extra[ext]
	}
	if t == "" {
		t = http.DetectContentType(data)
	}
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return t
}

// Kind returns the top-level type of a MIME string, e.g. "image".
func Kind(mimeType string) string {
	top, _, _ := strings.Cut(mimeType, "/")
	return top
}
