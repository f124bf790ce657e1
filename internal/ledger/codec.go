package ledger

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DecodeBytes turns the ledger's assorted byte encodings into readable text.
// Move vector<u8> fields arrive either as JSON number arrays or as 0x-prefixed
// hex strings, and the contract layer sometimes hex-encodes an already
// hex-encoded URI. At most one extra level of nesting is unwrapped so
// adversarial input cannot loop the decoder. Decode failures degrade to "";
// this never returns an error.
func DecodeBytes(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case []byte:
		return utf8String(v)
	case []interface{}:
		buf := make([]byte, 0, len(v))
		for _, el := range v {
			n, ok := asByte(el)
			if !ok {
				return ""
			}
			buf = append(buf, n)
		}
		return utf8String(buf)
	case string:
		b, ok := hexBytes(v)
		if !ok {
			// Plain string, or 0x-prefixed but not actually hex; keep as-is.
			return v
		}
		decoded := utf8String(b)
		if inner, ok := hexBytes(decoded); ok {
			return utf8String(inner)
		}
		return decoded
	default:
		return fmt.Sprintf("%v", raw)
	}
}

func hexBytes(s string) ([]byte, bool) {
	if !strings.HasPrefix(s, "0x") {
		return nil, false
	}
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, false
	}
	return b, true
}

func utf8String(b []byte) string {
	if !utf8.Valid(b) {
		return ""
	}
	return string(b)
}

func asByte(el interface{}) (byte, bool) {
	switch n := el.(type) {
	case float64:
		if n < 0 || n > 255 {
			return 0, false
		}
		return byte(n), true
	case int:
		if n < 0 || n > 255 {
			return 0, false
		}
		return byte(n), true
	default:
		return 0, false
	}
}
