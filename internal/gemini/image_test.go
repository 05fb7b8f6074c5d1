package gemini

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestDecodeImage(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString(pngHeader)

	tests := []struct {
		name     string
		input    string
		wantMIME string
		wantErr  bool
	}{
		{name: "plain base64", input: raw, wantMIME: "image/png"},
		{name: "data url", input: "data:image/jpeg;base64," + raw, wantMIME: "image/jpeg"},
		{name: "data url without image type is sniffed", input: "data:application/octet-stream;base64," + raw, wantMIME: "image/png"},
		{name: "unpadded base64", input: base64.RawStdEncoding.EncodeToString(pngHeader), wantMIME: "image/png"},
		{name: "empty", input: "", wantErr: true},
		{name: "not base64", input: "!!!", wantErr: true},
		{name: "not an image", input: base64.StdEncoding.EncodeToString([]byte("hello, world")), wantErr: true},
		{name: "data url not base64", input: "data:image/png," + raw, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeImage(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidImage) {
					t.Errorf("error = %v, want ErrInvalidImage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeImage() error = %v", err)
			}
			if img.MIMEType != tt.wantMIME {
				t.Errorf("mime = %q, want %q", img.MIMEType, tt.wantMIME)
			}
			if img.Base64 != raw {
				t.Errorf("base64 not normalized: %q", img.Base64)
			}
			if len(img.Fingerprint) != 64 {
				t.Errorf("fingerprint = %q, want 64 hex chars", img.Fingerprint)
			}
		})
	}
}

func TestDecodeImage_FingerprintDependsOnBytesOnly(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString(pngHeader)

	a, _ := DecodeImage(raw)
	b, _ := DecodeImage("data:image/png;base64," + raw)
	if a.Fingerprint != b.Fingerprint {
		t.Error("same bytes gave different fingerprints")
	}

	other, _ := DecodeImage(base64.StdEncoding.EncodeToString(append(append([]byte{}, pngHeader...), 0x01)))
	if other.Fingerprint == a.Fingerprint {
		t.Error("different bytes gave the same fingerprint")
	}
}
