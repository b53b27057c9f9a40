package media

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DecodedImage is an image decoded from a base64 data URI
type DecodedImage struct {
	// Data is the raw image content
	Data []byte
	// Extension is the file extension derived from the sniffed content
	// type, including the leading dot
	Extension string
	// ContentType is the sniffed MIME type
	ContentType string
}

// DecodeImageDataURI decodes a "data:image/...;base64," URI. The content type
// is sniffed from the decoded bytes rather than trusted from the URI prefix.
func DecodeImageDataURI(uri string) (*DecodedImage, error) {
	const prefix = "data:image/"
	if !strings.HasPrefix(uri, prefix) {
		return nil, fmt.Errorf("not an image data uri")
	}

	marker := strings.Index(uri, ";base64,")
	if marker < 0 {
		return nil, fmt.Errorf("data uri is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(uri[marker+len(";base64,"):])
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, fmt.Errorf("payload is not an image: %s", detected.String())
	}

	return &DecodedImage{
		Data:        data,
		Extension:   detected.Extension(),
		ContentType: detected.String(),
	}, nil
}
