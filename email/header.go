package email

import (
	"bytes"
	"fmt"
	"io"
)

// HeaderEntry is a single raw header line: a key and its undecoded value.
type HeaderEntry struct {
	Key   Key
	Value []byte
}

// Encode writes the entry in raw RFC 5322 folded form.
//
// This is the renderer behind Header.Encode and Header.String; it folds at
// the nearest space. The structured path (email/registry and
// email/mimewriter, which email/msgbuilder uses for every header) folds at
// writer-chosen preferred breakpoints instead.
func (entry *HeaderEntry) Encode(w io.Writer) (n int, err error) {
	var wErr error
	defer func() {
		if err == nil {
			err = wErr
		}
	}()
	printf := func(format string, args ...interface{}) {
		n2, err := fmt.Fprintf(w, format, args...)
		if wErr == nil {
			wErr = err
		}
		n += n2
	}

	v := entry.Value
	if len(v) == 0 {
		printf("%s:\r\n", entry.Key)
		return n, nil
	}
	printf("%s: ", entry.Key)

	// RFC 5322 2.1.1: lines should be no more than 78 characters and must
	// be no more than 998, excluding the CRLF. We aim conservative and
	// only reach for the hard limit when there is nowhere to fold.
	const padding = "    "
	spent := len(entry.Key) + len(": ")
	limit := 78

	for {
		if len(v) < limit-spent {
			printf("%s", v)
			break
		}
		var i int
		for i = limit - spent - 1; i > 0; i-- {
			if v[i] == ' ' {
				break
			}
		}
		skip := 0
		if i > 0 {
			// Found a fold point on whitespace: the padding on the next
			// line replaces it, so don't also carry it over.
			skip = 1
		} else {
			if limit == 78 {
				limit = 998
				continue
			}
			// Nowhere to break even at the hard limit; fold anyway.
			i = 998 - spent
			if i <= 0 || i >= len(v) {
				i = len(v)
			}
		}
		printf("%s\r\n%s", v[:i], padding)
		spent = len(padding)
		limit = 78
		v = v[i+skip:]
	}
	printf("\r\n")
	return n, nil
}

// Header is an ordered collection of raw MIME header entries, preserving
// repetition and insertion order, with a lazily built index for lookup.
type Header struct {
	Entries []HeaderEntry
	Index   map[Key][][]byte
}

// Add appends a new raw header entry, keeping any existing entries for Key.
func (h *Header) Add(k Key, v []byte) {
	h.Entries = append(h.Entries, HeaderEntry{Key: k, Value: v})
	if h.Index == nil {
		h.Index = make(map[Key][][]byte)
	}
	h.Index[k] = append(h.Index[k], v)
}

// Get returns the first raw value stored under k, or nil if absent.
func (h *Header) Get(k Key) []byte {
	h.ensureIndex()
	vals := h.Index[k]
	if len(vals) == 0 {
		return nil
	}
	return vals[0]
}

// GetAll returns every raw value stored under k, in insertion order.
func (h *Header) GetAll(k Key) [][]byte {
	h.ensureIndex()
	return h.Index[k]
}

func (h *Header) ensureIndex() {
	if h.Index != nil {
		return
	}
	h.Index = make(map[Key][][]byte)
	for _, entry := range h.Entries {
		h.Index[entry.Key] = append(h.Index[entry.Key], entry.Value)
	}
}

// Del removes every entry stored under k.
func (h *Header) Del(k Key) {
	var e []HeaderEntry
	for _, entry := range h.Entries {
		if entry.Key != k {
			e = append(e, entry)
		}
	}
	h.Entries = e
	if h.Index != nil {
		delete(h.Index, k)
	}
}

// ForEach calls fn once per entry, in insertion order.
func (h *Header) ForEach(fn func(key Key, val []byte)) {
	for _, entry := range h.Entries {
		fn(entry.Key, entry.Value)
	}
}

// Encode writes every entry in raw folded form followed by the blank line
// that terminates a header block.
func (h *Header) Encode(w io.Writer) (n int, err error) {
	for _, entry := range h.Entries {
		n2, err := entry.Encode(w)
		n += n2
		if err != nil {
			return n, err
		}
	}
	n2, err := io.WriteString(w, "\r\n")
	n += n2
	return n, err
}

func (h Header) String() string {
	buf := new(bytes.Buffer)
	if _, err := h.Encode(buf); err != nil {
		return fmt.Sprintf("email.Header(encode error: %v)", err)
	}
	return buf.String()
}
