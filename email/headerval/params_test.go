// Package headerval_test is an external test package (rather than
// headerval itself) specifically so TestContentTypeRoundTripIdempotent
// below can drive the real encoder in email/registry/email/mimewriter
// without headerval depending on either: registry already imports
// headerval, so an internal test importing registry back would cycle.
package headerval_test

import (
	"strings"
	"testing"

	"mimekiln/email/headerval"
	"mimekiln/email/mimewriter"
	"mimekiln/email/registry"
)

func TestDecodeContentTypeBasic(t *testing.T) {
	ct := headerval.DecodeContentType(`multipart/mixed; boundary=frontier`)
	if ct.Type != "multipart/mixed" {
		t.Errorf("got type %q, want multipart/mixed", ct.Type)
	}
	if ct.Params["boundary"] != "frontier" {
		t.Errorf("got boundary %q", ct.Params["boundary"])
	}
}

func TestDecodeContentTypeMalformedFallsBackToTextPlain(t *testing.T) {
	ct := headerval.DecodeContentType("garbage-no-slash")
	if ct.Type != "text/plain" {
		t.Errorf("got %q, want text/plain", ct.Type)
	}
	if len(ct.Params) != 0 {
		t.Errorf("got params %v, want empty", ct.Params)
	}
}

// format renders raw (a Content-Type header value) through the real
// decode/encode pair registered in email/registry, run behind a
// mimewriter.Emitter exactly as email/msgbuilder does, and returns the
// emitted "Content-Type: ...\r\n" line.
func format(t *testing.T, raw string) string {
	t.Helper()
	entry := registry.Lookup("Content-Type")
	ct := headerval.DecodeContentType(raw)
	var buf strings.Builder
	e := mimewriter.NewEmitter(&buf)
	if err := e.StructuredByName(entry.PreferredName, ct, entry.Encode); err != nil {
		t.Fatalf("encoding %q: %v", raw, err)
	}
	return buf.String()
}

func TestContentTypeRoundTripIdempotent(t *testing.T) {
	// Property 3 (spec.md §8): format(parse(S)) == format(parse(format(parse(S)))).
	// Unlike decoding the same literal twice (trivially stable for any
	// deterministic function), this drives the header back through the
	// actual wire-format encoder registry.Lookup("Content-Type").Encode
	// uses, then decodes and re-encodes its own output, so a regression in
	// either the decoder or the encoder's quoting/param-ordering would show
	// up as a mismatch here.
	const s = `Text/Plain; Charset="UTF-8"; Filename*=UTF-8''%E2%82%AC.txt`

	once := format(t, s)
	value := strings.TrimSuffix(strings.TrimPrefix(once, "Content-Type: "), "\r\n")
	twice := format(t, value)

	if once != twice {
		t.Errorf("format(parse(S)) != format(parse(format(parse(S)))):\n%q\n%q", once, twice)
	}
}

func TestDecodeParamHeaderRFC2231ExtendedValue(t *testing.T) {
	// spec.md §8 concrete scenario.
	ph := headerval.DecodeParamHeader(`attachment; filename*=UTF-8''%E2%82%AC.txt`)
	if ph.PreSemi != "attachment" {
		t.Errorf("got preSemi %q", ph.PreSemi)
	}
	if got := ph.Params["filename"]; got != "€.txt" {
		t.Errorf("got filename %q, want %q", got, "€.txt")
	}
}

func TestDecodeParamHeaderRFC2231ExtendedValueUnknownCharsetDropped(t *testing.T) {
	// spec.md §4.4 "Charset decoding for 2231 values": an unknown charset
	// causes the parameter to be dropped, even for the single-segment
	// foo*= form (not just the foo*0* continuation form).
	ph := headerval.DecodeParamHeader(`attachment; filename*=bogus-charset''abc`)
	if _, ok := ph.Params["filename"]; ok {
		t.Errorf("expected filename to be dropped, got %q", ph.Params["filename"])
	}
}

func TestDecodeParamHeaderRFC2231Continuations(t *testing.T) {
	ph := headerval.DecodeParamHeader(`attachment; filename*0="long"; filename*1="name.txt"`)
	if got := ph.Params["filename"]; got != "longname.txt" {
		t.Errorf("got filename %q, want %q", got, "longname.txt")
	}
}

func TestDecodeParamHeaderRFC2231ContinuationsWithCharset(t *testing.T) {
	ph := headerval.DecodeParamHeader(`attachment; filename*0*=UTF-8''%E2%82%AC; filename*1=".txt"`)
	if got := ph.Params["filename"]; got != "€.txt" {
		t.Errorf("got filename %q, want %q", got, "€.txt")
	}
}

func TestDecodeParamHeaderIncompleteContinuationsDropped(t *testing.T) {
	// A gap in the continuation sequence (missing index 1) means the
	// reassembly cannot be trusted, so the param is dropped entirely rather
	// than emitting a garbled value.
	ph := headerval.DecodeParamHeader(`attachment; filename*0="a"; filename*2="c"`)
	if _, ok := ph.Params["filename"]; ok {
		t.Errorf("expected filename to be dropped, got %q", ph.Params["filename"])
	}
}

func TestDecodeParamHeaderPlainOverridesNothingContinuationWins(t *testing.T) {
	ph := headerval.DecodeParamHeader(`attachment; filename=plain.txt; filename*0="cont"; filename*1=".txt"`)
	if got := ph.Params["filename"]; got != "cont.txt" {
		t.Errorf("got filename %q, want %q (continuation wins over plain)", got, "cont.txt")
	}
}
