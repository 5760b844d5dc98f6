// Package rfc2047 decodes RFC 2047 encoded-words, folding adjacent
// same-charset runs through a single streaming charset decoder so that a
// multi-byte character split across encoder-chosen word boundaries still
// decodes correctly.
package rfc2047

import (
	"encoding/base64"
	"io"
	"mime/quotedprintable"
	"regexp"
	"strings"

	"mimekiln/email/charset"
)

var encodedWordRE = regexp.MustCompile(`=\?[^?]*\?[BQbq]\?[^?]*\?=`)

// DecodeWords scans text for RFC 2047 encoded-words and decodes them,
// passing through anything that isn't a recognized encoded-word unchanged.
// Whitespace runs strictly between two encoded-words are discarded; any
// other intervening text flushes the in-progress charset decoder.
func DecodeWords(text string) string {
	var out strings.Builder
	var dec *charset.Decoder
	flush := func() {
		if dec != nil {
			if s, err := dec.Flush(); err == nil {
				out.WriteString(s)
			}
			dec = nil
		}
	}

	pos := 0
	prevWasWord := false
	locs := encodedWordRE.FindAllStringIndex(text, -1)
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		between := text[pos:start]
		switch {
		case strings.TrimSpace(between) != "":
			flush()
			out.WriteString(between)
		case prevWasWord:
			// Whitespace-only gap strictly between two encoded-words: discarded.
		default:
			// Leading whitespace before the first encoded-word: preserved.
			out.WriteString(between)
		}

		word := text[start:end]
		decodedLabel, data, ok := decodeOneSegment(word)
		if !ok {
			flush()
			out.WriteString(word)
			pos = end
			prevWasWord = false
			continue
		}
		if dec == nil || !strings.EqualFold(dec.Label(), decodedLabel) {
			flush()
			d, ok := charset.NewDecoder(decodedLabel)
			if !ok {
				out.WriteString(word)
				pos = end
				prevWasWord = false
				continue
			}
			dec = d
		}
		if s, err := dec.Feed(data); err == nil {
			out.WriteString(s)
		}
		pos = end
		prevWasWord = true
	}
	flush()
	out.WriteString(text[pos:])
	return out.String()
}

// decodeOneSegment parses a single "=?charset?enc?text?=" run, returning
// the charset label (with any *language suffix stripped) and the raw
// decoded bytes for that segment (not yet charset-decoded).
func decodeOneSegment(word string) (label string, data []byte, ok bool) {
	body := word[2 : len(word)-2] // strip "=?" and "?="
	parts := strings.SplitN(body, "?", 3)
	if len(parts) != 3 {
		return "", nil, false
	}
	label = parts[0]
	if i := strings.IndexByte(label, '*'); i >= 0 {
		label = label[:i]
	}
	enc := parts[1]
	text := parts[2]

	switch enc {
	case "B", "b":
		s := text
		if len(s)%4 == 1 && strings.HasSuffix(s, "=") {
			// Tolerate an accidental extra '=' padding character.
			s = s[:len(s)-1]
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			b, err = base64.RawStdEncoding.DecodeString(s)
			if err != nil {
				return "", nil, false
			}
		}
		return label, b, true

	case "Q", "q":
		s := strings.ReplaceAll(text, "_", " ")
		r := quotedprintable.NewReader(strings.NewReader(s))
		var buf strings.Builder
		if _, err := io.Copy(&buf, r); err != nil {
			return "", nil, false
		}
		return label, []byte(buf.String()), true

	default:
		return "", nil, false
	}
}
