// Package charset resolves MIME charset labels to Go encodings and provides
// a streaming decoder that can be fed bytes across multiple calls, used by
// email/rfc2047 to decode adjacent same-charset encoded-words without
// corrupting multi-byte characters split at a segment boundary.
package charset

import (
	"log"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// aliases covers charset labels seen in the wild that ianaindex.MIME does
// not itself resolve, grounded on the teacher's addr.go gb2312 special
// case and extended to the rest of the legacy encodings a streaming MIME
// library is expected to meet: Windows code pages, the other CJK
// double-byte sets, and the UTF-16 family.
var aliases = map[string]encoding.Encoding{
	"gb2312":       simplifiedchinese.HZGB2312,
	"gbk":          simplifiedchinese.GBK,
	"gb18030":      simplifiedchinese.GB18030,
	"big5":         traditionalchinese.Big5,
	"euc-kr":       korean.EUCKR,
	"ks_c_5601-1987": korean.EUCKR,
	"iso-2022-jp":  japanese.ISO2022JP,
	"shift_jis":    japanese.ShiftJIS,
	"sjis":         japanese.ShiftJIS,
	"euc-jp":       japanese.EUCJP,
	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"windows-1253": charmap.Windows1253,
	"windows-1254": charmap.Windows1254,
	"windows-1255": charmap.Windows1255,
	"windows-1256": charmap.Windows1256,
	"windows-1257": charmap.Windows1257,
	"windows-1258": charmap.Windows1258,
	"koi8-r":       charmap.KOI8R,
	"koi8-u":       charmap.KOI8U,
	"utf-16":       unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16le":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
}

// Lookup resolves a MIME charset label (e.g. "utf-8", "iso-8859-1",
// "gb2312") to a Go encoding. It reports ok=false for unknown labels.
func Lookup(label string) (encoding.Encoding, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return nil, false
	}
	enc, err := ianaindex.MIME.Encoding(label)
	if err == nil && enc != nil {
		return enc, true
	}
	// ianaindex doesn't resolve every alias seen in the wild.
	if enc, ok := aliases[label]; ok {
		return enc, true
	}
	log.Printf("charset: no encoding for charset %q", label)
	return nil, false
}

// Decoder is a streaming charset-to-UTF-8 decoder that can be fed byte
// chunks incrementally and flushed once no more input is coming.
type Decoder struct {
	label string
	enc   encoding.Encoding
	dec   *encoding.Decoder
	buf   []byte
}

// NewDecoder acquires a streaming decoder for label. It returns ok=false if
// the label does not resolve to a known encoding.
func NewDecoder(label string) (*Decoder, bool) {
	enc, ok := Lookup(label)
	if !ok {
		return nil, false
	}
	return &Decoder{label: label, enc: enc, dec: enc.NewDecoder()}, true
}

// Label reports the charset label this decoder was acquired for.
func (d *Decoder) Label() string { return d.label }

// Feed decodes another chunk of input bytes, appending to the decoder's
// internal carry buffer so that a byte sequence split across chunks still
// decodes correctly.
func (d *Decoder) Feed(p []byte) (string, error) {
	d.buf = append(d.buf, p...)
	out, n, err := transformAll(d.dec, d.buf, false)
	d.buf = d.buf[n:]
	return out, err
}

// Flush decodes any remaining buffered bytes and releases the decoder.
func (d *Decoder) Flush() (string, error) {
	out, _, err := transformAll(d.dec, d.buf, true)
	d.buf = nil
	return out, err
}

func transformAll(dec *encoding.Decoder, src []byte, atEOF bool) (out string, consumed int, err error) {
	dst := make([]byte, 4096)
	var result []byte
	for {
		nDst, nSrc, terr := dec.Transform(dst, src, atEOF)
		result = append(result, dst[:nDst]...)
		src = src[nSrc:]
		consumed += nSrc
		switch terr {
		case nil:
			return string(result), consumed, nil
		case transform.ErrShortDst:
			continue
		case transform.ErrShortSrc:
			if atEOF {
				// No more input is coming; this is as far as we can decode.
				return string(result), consumed, nil
			}
			return string(result), consumed, nil
		default:
			return string(result), consumed, terr
		}
	}
}
