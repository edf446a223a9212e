package domain

import "strings"

// PayloadKind tags the encoding of a stored binary value
type PayloadKind int

const (
	PayloadAbsent PayloadKind = iota
	PayloadHex
	PayloadBase64
	PayloadRaw
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadHex:
		return "hex"
	case PayloadBase64:
		return "base64"
	case PayloadRaw:
		return "raw"
	default:
		return "absent"
	}
}

// BinaryPayload is a stored value that is either text-encoded or raw bytes.
// Only one of Text or Bytes is meaningful, depending on Kind.
type BinaryPayload struct {
	Kind  PayloadKind
	Text  string
	Bytes []byte
}

func HexPayload(s string) BinaryPayload    { return BinaryPayload{Kind: PayloadHex, Text: s} }
func Base64Payload(s string) BinaryPayload { return BinaryPayload{Kind: PayloadBase64, Text: s} }
func RawPayload(b []byte) BinaryPayload    { return BinaryPayload{Kind: PayloadRaw, Bytes: b} }

// ClassifyPayload decides the variant of a value read from a driver column.
func ClassifyPayload(v any) BinaryPayload {
	switch val := v.(type) {
	case nil:
		return BinaryPayload{}
	case []byte:
		if len(val) == 0 {
			return BinaryPayload{}
		}
		return RawPayload(append([]byte(nil), val...))
	case string:
		s := strings.TrimSpace(val)
		switch {
		case s == "":
			return BinaryPayload{}
		case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
			return HexPayload(s)
		default:
			return Base64Payload(s)
		}
	default:
		return BinaryPayload{}
	}
}
