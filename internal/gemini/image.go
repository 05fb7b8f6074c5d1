package gemini

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/blake2b"
)

var ErrInvalidImage = errors.New("invalid image")

// Image is a decoded upload ready to be sent to the OCR model.
type Image struct {
	Data     []byte
	MIMEType string
	// Base64 is Data in standard encoding, without any data URL prefix.
	Base64 string
	// Fingerprint is the hex BLAKE2b-256 digest of Data.
	Fingerprint string
}

// DecodeImage accepts raw base64 or a data URL ("data:image/png;base64,...").
// The MIME type comes from the data URL when given, otherwise it is sniffed.
func DecodeImage(input string) (Image, error) {
	input = strings.TrimSpace(input)
	declared := ""
	if strings.HasPrefix(input, "data:") {
		header, payload, ok := strings.Cut(input, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return Image{}, errors.Join(ErrInvalidImage, errors.New("data URL is not base64"))
		}
		declared = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		input = payload
	}
	if input == "" {
		return Image{}, errors.Join(ErrInvalidImage, errors.New("empty image"))
	}

	data, err := base64.StdEncoding.DecodeString(input)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(input, "="))
		if err != nil {
			return Image{}, errors.Join(ErrInvalidImage, err)
		}
	}

	mimeType := declared
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Image{}, errors.Join(ErrInvalidImage, errors.New("not an image: "+mimeType))
	}

	sum := blake2b.Sum256(data)
	return Image{
		Data:        data,
		MIMEType:    mimeType,
		Base64:      base64.StdEncoding.EncodeToString(data),
		Fingerprint: hex.EncodeToString(sum[:]),
	}, nil
}
