// Package logo decodes the stored report logo into image bytes.
package logo

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/rs/zerolog"

	"github.com/posleasing/leasesync/internal/domain"
)

// ParameterCode is the system parameter holding the logo
const ParameterCode = "Logo"

// Decode turns a stored payload into image bytes. The bool is false when no
// logo is configured. A malformed payload yields an empty, non-nil slice.
func Decode(p domain.BinaryPayload, log zerolog.Logger) ([]byte, bool) {
	switch p.Kind {
	case domain.PayloadRaw:
		if len(p.Bytes) == 0 {
			return nil, false
		}
		return append([]byte(nil), p.Bytes...), true

	case domain.PayloadHex:
		raw := strings.TrimSpace(p.Text)
		if raw == "" {
			return nil, false
		}
		// A bare prefix is an empty image, not a missing one
		s := strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
		if s == "" {
			return []byte{}, true
		}
		if len(s)%2 != 0 {
			s = "0" + s
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			log.Warn().Err(err).Str("encoding", "hex").Msg("Logo payload could not be decoded")
			return []byte{}, true
		}
		return b, true

	case domain.PayloadBase64:
		s := strings.TrimSpace(p.Text)
		if s == "" {
			return nil, false
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			log.Warn().Err(err).Str("encoding", "base64").Msg("Logo payload could not be decoded")
			return []byte{}, true
		}
		return b, true

	default:
		return nil, false
	}
}

// FromParameters finds the logo parameter and decodes it.
func FromParameters(params []domain.SystemParameter, log zerolog.Logger) []byte {
	p, ok := domain.FindParameter(params, ParameterCode)
	if !ok {
		log.Debug().Msg("No logo parameter configured")
		return nil
	}
	b, ok := Decode(p.Payload, log)
	if !ok {
		return nil
	}
	return b
}
