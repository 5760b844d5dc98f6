// Package mimehead implements StructuredHeaders (spec §3): the lazy,
// cached, map-like view over a body part's raw header bytes that wires
// email/registry, email/headerval and email/rfc2047 together. It is the
// object delivered to a mimeparser.Consumer's StartPart callback.
package mimehead

import (
	"fmt"
	"strings"

	"mimekiln/email"
	"mimekiln/email/headerval"
	"mimekiln/email/registry"
)

// StructuredHeaders wraps one body part's raw header block: the original
// bytes (mbox "From " envelope already stripped by the parser), an ordered
// raw-value index, and a lazily populated decoded-value cache.
//
// Created once per part by the parser when end-of-headers is detected;
// immutable raw data; destroyed along with the part.
type StructuredHeaders struct {
	raw         *email.Header
	rawText     []byte
	charset     string
	defaultType headerval.ContentType
	cache       map[email.Key]interface{}

	// Warnings accumulates errors returned by a registered decoder; the
	// cached value for that header is then nil. The built-in decoders
	// recover from malformed input on their own and return no error, so
	// such input is not recorded here.
	Warnings []error
}

// New builds a StructuredHeaders over an already-split raw header block.
// defaultContentType is the part's fallback Content-Type (spec §4.7:
// "text/plain" except inside multipart/digest, where it is
// "message/rfc822").
func New(raw *email.Header, rawText []byte, defaultContentType string) *StructuredHeaders {
	return &StructuredHeaders{
		raw:         raw,
		rawText:     rawText,
		defaultType: headerval.DecodeContentType(defaultContentType),
	}
}

// RawHeaderText returns the original header block bytes.
func (h *StructuredHeaders) RawHeaderText() []byte { return h.rawText }

// Has reports whether name was present in the raw header block.
func (h *StructuredHeaders) Has(name string) bool {
	return len(h.raw.GetAll(email.CanonicalKey([]byte(name)))) > 0
}

// GetRawHeader returns every raw occurrence of name, in insertion order.
func (h *StructuredHeaders) GetRawHeader(name string) [][]byte {
	return h.raw.GetAll(email.CanonicalKey([]byte(name)))
}

// Size reports the number of distinct header names present.
func (h *StructuredHeaders) Size() int {
	seen := map[email.Key]bool{}
	for _, e := range h.raw.Entries {
		seen[e.Key] = true
	}
	return len(seen)
}

// Get returns the decoded structured value for name, decoding and caching
// it on first access. ok is false if name was not present.
func (h *StructuredHeaders) Get(name string) (value interface{}, ok bool) {
	key := email.CanonicalKey([]byte(name))
	rawVals := h.raw.GetAll(key)
	if len(rawVals) == 0 {
		return nil, false
	}
	if h.cache == nil {
		h.cache = make(map[email.Key]interface{})
	}
	if v, ok := h.cache[key]; ok {
		return v, true
	}
	entry := registry.Lookup(string(key))
	var decoded interface{}
	if entry != nil && entry.Decode != nil {
		v, err := entry.Decode(rawVals)
		if err != nil {
			h.Warnings = append(h.Warnings, fmt.Errorf("mimehead: decoding %s: %w", key, err))
			decoded = nil
		} else {
			decoded = v
		}
	} else {
		out := make([]string, len(rawVals))
		for i, v := range rawVals {
			out[i] = string(v)
		}
		decoded = out
	}
	h.cache[key] = decoded
	return decoded, true
}

// Charset returns the part's currently configured charset label. Writing
// it via SetCharset clears the decoded cache (spec §3: "writing it clears
// the decoded cache"), since any cached value that was charset-sensitive
// (none currently are, but future decoders may be) must be recomputed.
func (h *StructuredHeaders) Charset() string { return h.charset }

// SetCharset overrides the part's charset label and clears the decode
// cache.
func (h *StructuredHeaders) SetCharset(cs string) {
	h.charset = cs
	h.cache = nil
}

// ContentType returns the decoded Content-Type header, or the part's
// configured default when the header is absent.
func (h *StructuredHeaders) ContentType() headerval.ContentType {
	if v, ok := h.Get("Content-Type"); ok {
		if ct, ok := v.(headerval.ContentType); ok {
			return ct
		}
	}
	return h.defaultType
}

// ContentID returns the Content-ID header with its surrounding "<...>"
// stripped, a SUPPLEMENT convenience accessor grounded on
// msgcleaver.go's strings.TrimSuffix(strings.TrimPrefix(...)) pattern
// (spec_full §4.7 supplement); it does not affect parser behavior.
func (h *StructuredHeaders) ContentID() string {
	raw := h.GetRawHeader("Content-ID")
	if len(raw) == 0 {
		return ""
	}
	s := strings.TrimSpace(string(raw[0]))
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	return s
}

// Entry is one (preferred-spelling, decoded-value) pair yielded by ForEach,
// in the insertion order of the raw header names.
type Entry struct {
	Name  string
	Value interface{}
}

// ForEach visits every distinct header name once, in first-occurrence
// insertion order, yielding its preferred spelling and decoded value.
func (h *StructuredHeaders) ForEach(fn func(Entry)) {
	seen := map[email.Key]bool{}
	for _, e := range h.raw.Entries {
		if seen[e.Key] {
			continue
		}
		seen[e.Key] = true
		value, _ := h.Get(string(e.Key))
		name := string(e.Key)
		if reg := registry.Lookup(name); reg != nil {
			name = reg.PreferredName
		}
		fn(Entry{Name: name, Value: value})
	}
}
