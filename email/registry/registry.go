// Package registry implements the process-wide structured-header registry
// described in spec §4.6: a lazily-initialized singleton mapping lower-case
// header name to a (decoder, encoder, preferred-spelling) triple. Built-ins
// are populated once at first use and are locked: registering a name that
// collides with a built-in fails.
//
// This mirrors email.CanonicalKey's built-in lookup table (email/key.go)
// but carries decode/encode behavior instead of spelling alone, matching
// spec.md's design note that the registry is "a lazily-initialized
// singleton with a read-optimized map and an immutable built-in subset."
package registry

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"mimekiln/email"
	"mimekiln/email/headerval"
	"mimekiln/email/mimewriter"
	"mimekiln/email/rfc2047"
)

// Decoder turns the raw occurrences of a header (one []byte per occurrence,
// in insertion order) into a decoded structured value.
type Decoder func(raw [][]byte) (interface{}, error)

// Encoder writes a decoded structured value to e using the header's
// preferred spelling, which Emitter.StructuredByName has already written.
type Encoder func(e *mimewriter.Emitter, value interface{}) error

// Entry is one registered header's decode/encode/spelling triple.
type Entry struct {
	PreferredName string
	Decode        Decoder
	Encode        Encoder
	builtin       bool
}

var (
	once sync.Once
	mu   sync.RWMutex
	reg  map[string]*Entry
)

func ensureInit() {
	once.Do(func() {
		reg = make(map[string]*Entry)
		registerBuiltins()
	})
}

// Lookup returns the registered entry for header name (case-insensitive),
// or nil if none is registered.
func Lookup(name string) *Entry {
	ensureInit()
	mu.RLock()
	defer mu.RUnlock()
	return reg[strings.ToLower(name)]
}

// Register adds a new entry for name. It fails if name collides with a
// built-in entry (built-ins are locked) or already has a non-builtin entry
// (re-registration must go through a fresh name).
func Register(name string, e Entry) error {
	ensureInit()
	mu.Lock()
	defer mu.Unlock()
	key := strings.ToLower(name)
	if existing, ok := reg[key]; ok {
		if existing.builtin {
			return fmt.Errorf("registry: cannot override built-in header %q", existing.PreferredName)
		}
		return fmt.Errorf("registry: header %q is already registered", existing.PreferredName)
	}
	e.builtin = false
	if e.PreferredName == "" {
		e.PreferredName = name
	}
	reg[key] = &e
	return nil
}

func registerBuiltin(name string, e Entry) {
	e.builtin = true
	if e.PreferredName == "" {
		e.PreferredName = name
	}
	reg[strings.ToLower(name)] = &e
}

// addressHeaders is the §4.6 "Addressing" family: RFC 5322/5536/3798 plus
// the non-standard entries spec.md names.
var addressHeaders = []string{
	"Bcc", "Cc", "From", "Reply-To",
	"Resent-Bcc", "Resent-Cc", "Resent-From", "Resent-Reply-To", "Resent-Sender", "Resent-To",
	"Sender", "To", "Approved",
	"Disposition-Notification-To", "Delivered-To", "Return-Receipt-To",
	"Mail-Reply-To", "Mail-Followup-To",
}

// unstructuredHeaders is the §4.6 "Unstructured" family.
var unstructuredHeaders = []string{
	"Comments", "Keywords", "Subject", "MIME-Version", "Content-Description", "User-Agent",
}

// dateHeaders is the §4.6 "Dates" family.
var dateHeaders = []string{
	"Date", "Resent-Date", "Expires", "Injection-Date", "NNTP-Posting-Date",
}

// messageIDHeaders get RFC 2047 decoding only; full parsing is out of scope
// per spec.md §4.6.
var messageIDHeaders = []string{"Message-ID", "Resent-Message-ID"}

func registerBuiltins() {
	for _, name := range addressHeaders {
		registerBuiltin(name, Entry{
			Decode: decodeAddressList,
			Encode: encodeAddressList,
		})
	}
	for _, name := range unstructuredHeaders {
		registerBuiltin(name, Entry{
			Decode: decodeUnstructured,
			Encode: encodeUnstructured,
		})
	}
	for _, name := range dateHeaders {
		registerBuiltin(name, Entry{
			Decode: decodeDate,
			Encode: encodeDate,
		})
	}
	for _, name := range messageIDHeaders {
		registerBuiltin(name, Entry{
			Decode: decodeUnstructured,
			Encode: encodeUnstructured,
		})
	}
	registerBuiltin("Content-Type", Entry{
		Decode: decodeContentType,
		Encode: encodeContentType,
	})
	registerBuiltin("Content-Transfer-Encoding", Entry{
		Decode: decodeCTE,
		Encode: encodeCTE,
	})
}

func firstOrEmpty(raw [][]byte) string {
	if len(raw) == 0 {
		return ""
	}
	return string(raw[0])
}

func decodeAddressList(raw [][]byte) (interface{}, error) {
	var out []email.AddressOrGroup
	for _, v := range raw {
		out = append(out, headerval.DecodeAddressList(string(v))...)
	}
	return out, nil
}

func encodeAddressList(e *mimewriter.Emitter, value interface{}) error {
	list, ok := value.([]email.AddressOrGroup)
	if !ok {
		return fmt.Errorf("registry: address header encoder got %T, want []email.AddressOrGroup", value)
	}
	return e.AddAddresses(list)
}

// decodeUnstructured implements §4.6 "Decoder = RFC 2047 on the first
// occurrence": one decoded Unicode string per occurrence, each RFC
// 2047-decoded independently.
func decodeUnstructured(raw [][]byte) (interface{}, error) {
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = rfc2047.DecodeWords(string(v))
	}
	return out, nil
}

func encodeUnstructured(e *mimewriter.Emitter, value interface{}) error {
	switch v := value.(type) {
	case string:
		return e.AddUnstructured(v)
	case []string:
		if len(v) == 0 {
			return nil
		}
		return e.AddUnstructured(v[0])
	default:
		return fmt.Errorf("registry: unstructured header encoder got %T", value)
	}
}

func decodeDate(raw [][]byte) (interface{}, error) {
	t, ok := headerval.DecodeDate(firstOrEmpty(raw))
	if !ok {
		return time.Time{}, nil
	}
	return t, nil
}

func encodeDate(e *mimewriter.Emitter, value interface{}) error {
	t, ok := value.(time.Time)
	if !ok {
		return fmt.Errorf("registry: date header encoder got %T, want time.Time", value)
	}
	return e.AddDate(t)
}

func decodeContentType(raw [][]byte) (interface{}, error) {
	return headerval.DecodeContentType(firstOrEmpty(raw)), nil
}

func encodeContentType(e *mimewriter.Emitter, value interface{}) error {
	ct, ok := value.(headerval.ContentType)
	if !ok {
		return fmt.Errorf("registry: content-type encoder got %T, want headerval.ContentType", value)
	}
	if err := e.AddText(ct.Type, false); err != nil {
		return err
	}
	for _, k := range mimewriter.SortedKeys(ct.Params) {
		if err := e.AddText(";", true); err != nil {
			return err
		}
		if err := e.AddText(k+"=", false); err != nil {
			return err
		}
		if err := e.AddQuotable(ct.Params[k], " ()<>@,;:\\\"/[]?=", false); err != nil {
			return err
		}
	}
	return nil
}

func decodeCTE(raw [][]byte) (interface{}, error) {
	return strings.ToLower(strings.TrimSpace(firstOrEmpty(raw))), nil
}

func encodeCTE(e *mimewriter.Emitter, value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("registry: content-transfer-encoding encoder got %T", value)
	}
	return e.AddText(s, false)
}
