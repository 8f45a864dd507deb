package database

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidDataURL payload is not a base64 image data URL
var ErrInvalidDataURL = errors.New("image must be a base64 encoded data URL")

// DataURLImage decoded "data:image/png;base64,..." payload
type DataURLImage struct {
	ContentType string
	Data        []byte
}

var imageExtensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/jpg":     ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// Extension file extension for the content type
func (d DataURLImage) Extension() string {
	return imageExtensions[d.ContentType]
}

// ParseDataURL decode an image data URL
func ParseDataURL(s string) (DataURLImage, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return DataURLImage{}, ErrInvalidDataURL
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return DataURLImage{}, ErrInvalidDataURL
	}

	contentType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" || !strings.HasPrefix(contentType, "image/") {
		return DataURLImage{}, ErrInvalidDataURL
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return DataURLImage{}, ErrInvalidDataURL
	}

	return DataURLImage{ContentType: strings.ToLower(contentType), Data: data}, nil
}
