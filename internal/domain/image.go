package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const defaultImageMimeType = "image/png"

// EncodedImage is a self-contained image: raw bytes plus the declared MIME
// type. It round-trips to the data-URI form browsers produce from file
// uploads (data:<mime>;base64,<payload>).
type EncodedImage struct {
	MimeType string
	Data     []byte
}

// ParseDataURI decodes a base64 data URI into an EncodedImage.
func ParseDataURI(raw string) (EncodedImage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return EncodedImage{}, fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	if !strings.HasPrefix(raw, "data:") {
		return EncodedImage{}, fmt.Errorf("%w: image must be a data URI", ErrInvalidInput)
	}
	meta, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return EncodedImage{}, fmt.Errorf("%w: malformed data URI", ErrInvalidInput)
	}
	mime := strings.TrimSuffix(meta, ";base64")
	if mime == meta {
		return EncodedImage{}, fmt.Errorf("%w: image must be base64 encoded", ErrInvalidInput)
	}
	if mime == "" {
		mime = defaultImageMimeType
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return EncodedImage{}, fmt.Errorf("%w: decode image payload: %v", ErrInvalidInput, err)
	}
	if len(data) == 0 {
		return EncodedImage{}, fmt.Errorf("%w: empty image payload", ErrInvalidInput)
	}
	return EncodedImage{MimeType: mime, Data: data}, nil
}

// DataURI renders the image back into displayable data-URI form.
func (i EncodedImage) DataURI() string {
	mime := i.MimeType
	if mime == "" {
		mime = defaultImageMimeType
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// IsZero reports whether the image carries no payload.
func (i EncodedImage) IsZero() bool {
	return len(i.Data) == 0
}
