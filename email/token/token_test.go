package token

import "testing"

func TestTokenizeDelimiters(t *testing.T) {
	toks := Tokenize("a@x, b@y", ":,;<>@", Options{})
	var got []string
	for _, tok := range toks {
		got = append(got, tok.String())
	}
	want := []string{"a", "@", "x", ",", "b", "@", "y"}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenizeQuotedString(t *testing.T) {
	toks := Tokenize(`"Joe Q. Public" <john@example.com>`, "<>", Options{QuotedString: true})
	if len(toks) == 0 || toks[0].Kind != QuotedString {
		t.Fatalf("expected first token to be a quoted string, got %+v", toks)
	}
	if toks[0].Text != "Joe Q. Public" {
		t.Errorf("got %q, want %q", toks[0].Text, "Joe Q. Public")
	}
}

func TestTokenizeDomainLiteral(t *testing.T) {
	toks := Tokenize("foo@[192.168.1.1]", "@", Options{DomainLiteral: true})
	last := toks[len(toks)-1]
	if last.Kind != DomainLiteral || last.Text != "[192.168.1.1]" {
		t.Errorf("got %+v, want DomainLiteral [192.168.1.1]", last)
	}
}

func TestTokenizeCommentsLeniency(t *testing.T) {
	// Open Question (spec.md §9): delimiters inside comments fold into atom
	// text rather than being re-emitted as Delimiter tokens.
	toks := Tokenize("a(b,c)d", ",", Options{Comments: true})
	for _, tok := range toks {
		if tok.Kind == Delimiter {
			t.Errorf("comma inside comment should not produce a Delimiter token, got %+v", tok)
		}
	}
}

func TestTokenizeDomainLiteralInsideComment(t *testing.T) {
	// spec.md §4.1: quoted-strings and domain-literals are recognized even
	// inside comments. Mirrors TestTokenizeCommentsLeniency for the
	// DomainLiteral construct.
	toks := Tokenize("a(foo@[192.168.1.1])b", "@", Options{Comments: true, DomainLiteral: true})
	found := false
	for _, tok := range toks {
		if tok.Kind == DomainLiteral {
			found = true
			if tok.Text != "[192.168.1.1]" {
				t.Errorf("got DomainLiteral text %q, want [192.168.1.1]", tok.Text)
			}
		}
	}
	if !found {
		t.Errorf("expected a DomainLiteral token inside the comment, got %+v", toks)
	}
}

func TestTokenizeEncodedWord(t *testing.T) {
	toks := Tokenize("=?UTF-8?B?w6k=?=", "", Options{RFC2047: true})
	if len(toks) != 1 || toks[0].Kind != EncodedWord || toks[0].Text != "é" {
		t.Fatalf("got %+v, want single EncodedWord 'é'", toks)
	}
}

func TestTokenizeWhitespaceRunsCollapseToAtomBoundaries(t *testing.T) {
	// Property 1: whitespace carries no payload of its own; runs of
	// whitespace (of any length) only ever close the current atom, so
	// "b   c" and "b c" tokenize identically.
	a := Tokenize("b   c", "", Options{})
	b := Tokenize("b c", "", Options{})
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("got %d/%d tokens, want 2/2: %+v %+v", len(a), len(b), a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("token %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
