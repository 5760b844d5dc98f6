package mimeparser

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime/quotedprintable"
	"strings"
)

// contentConverter is the tagged-variant design spec.md §9 describes as
// "ContentConverter ∈ {None, QP, Base64, MultipartWithholdCRLF}": each
// implementation is stateful across calls, retaining whatever suffix it
// cannot yet safely decode or deliver.
type contentConverter interface {
	// push converts another chunk of input, returning bytes ready to
	// deliver now. final=true means no more input is coming: flush
	// whatever is held, leniently.
	push(data []byte, final bool) []byte
}

// newCTEConverter returns the converter for a Content-Transfer-Encoding
// label, or nil for "no conversion" (7bit, 8bit, binary, unknown).
func newCTEConverter(label string) contentConverter {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "base64":
		return &base64Converter{}
	case "quoted-printable":
		return &qpConverter{}
	default:
		return nil
	}
}

// qpConverter decodes quoted-printable content incrementally, holding back
// a trailing '=' or '=X' that might be the start of a "=XY" escape or a
// soft line break split across chunks.
type qpConverter struct{ pending []byte }

func (c *qpConverter) push(data []byte, final bool) []byte {
	buf := append(c.pending, data...)
	c.pending = nil

	cut := len(buf)
	if !final {
		if n := len(buf); n > 0 && buf[n-1] == '=' {
			cut = n - 1
		} else if n > 1 && buf[n-2] == '=' && isHexDigit(buf[n-1]) {
			cut = n - 2
		}
	}
	toDecode := buf[:cut]
	c.pending = append([]byte(nil), buf[cut:]...)

	var out []byte
	if len(toDecode) > 0 {
		r := quotedprintable.NewReader(bytes.NewReader(toDecode))
		decoded, _ := io.ReadAll(r) // lenient: malformed escapes are dropped by the reader
		out = decoded
	}
	if final && len(c.pending) > 0 {
		out = append(out, c.pending...)
		c.pending = nil
	}
	return out
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'F') || (b >= 'a' && b <= 'f')
}

// base64Converter decodes base64 content incrementally, holding back
// whatever isn't yet a multiple of 4 encoded characters.
type base64Converter struct{ pending []byte }

func (c *base64Converter) push(data []byte, final bool) []byte {
	buf := append(c.pending, data...)
	c.pending = nil

	filtered := make([]byte, 0, len(buf))
	for _, b := range buf {
		if isBase64Char(b) {
			filtered = append(filtered, b)
		}
	}
	usable := len(filtered)
	if !final {
		usable -= usable % 4
	}
	toDecode := filtered[:usable]
	c.pending = append([]byte(nil), filtered[usable:]...)

	if len(toDecode) == 0 {
		return nil
	}
	out := make([]byte, base64.StdEncoding.DecodedLen(len(toDecode)))
	n, err := base64.StdEncoding.Decode(out, toDecode)
	if err != nil {
		// Lenient recovery: tolerate missing/garbled padding.
		trimmed := bytes.TrimRight(toDecode, "=")
		out2 := make([]byte, base64.RawStdEncoding.DecodedLen(len(trimmed)))
		if n2, err2 := base64.RawStdEncoding.Decode(out2, trimmed); err2 == nil {
			return out2[:n2]
		}
		return nil
	}
	return out[:n]
}

func isBase64Char(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '+' || b == '/' || b == '='
}

// withholdCRLFConverter is the pass-through converter a multipart
// container installs on the stream of bytes it forwards to its current
// child: it withholds a trailing CRLF/CR/LF because it might belong to the
// boundary line that's about to arrive in the next chunk (spec §4.7:
// "install a content converter that withholds a trailing bare CR/LF to
// avoid leaking the CRLF that precedes the boundary").
type withholdCRLFConverter struct{ pending []byte }

func (c *withholdCRLFConverter) push(data []byte, final bool) []byte {
	buf := append(c.pending, data...)
	c.pending = nil
	if final {
		return buf
	}
	n := len(buf)
	switch {
	case n >= 2 && buf[n-2] == '\r' && buf[n-1] == '\n':
		c.pending = append([]byte(nil), buf[n-2:]...)
		return buf[:n-2]
	case n >= 1 && (buf[n-1] == '\r' || buf[n-1] == '\n'):
		c.pending = append([]byte(nil), buf[n-1:]...)
		return buf[:n-1]
	default:
		return buf
	}
}

// discardPending drops whatever CRLF this converter is withholding: called
// when a boundary match confirms that the withheld bytes really were the
// separator, not body content (spec §4.7 multipart split handler: "strip
// the CRLF that the regex captured out of the saved buffer tail ... it
// belonged to the boundary, not the part body").
func (c *withholdCRLFConverter) discardPending() {
	c.pending = nil
}
