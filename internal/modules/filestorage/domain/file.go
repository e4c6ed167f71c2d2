package domain

import (
	"errors"
	"path"
	"strings"
)

// DefaultDownloadName is used when a download is requested without a name.
const DefaultDownloadName = "maeumssi.png"

var (
	ErrURLMismatch = errors.New("url does not belong to this storage")
	ErrInvalidKey  = errors.New("invalid storage key")
)

// File describes a stored object.
type File struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// CleanKey normalizes a storage key and rejects keys that escape the root.
func CleanKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// DownloadName reduces filename to its last element, falling back to
// DefaultDownloadName.
func DownloadName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return DefaultDownloadName
	}
	return name
}
