package email

import (
	"bytes"
	"testing"
)

var headers = []HeaderEntry{
	{Key: "MIME-Version", Value: []byte("1.0")},
	{Key: "References", Value: []byte("<msgid1@mail.example.com> <msgid2@mail.example.com> <msgid3@mail.example.com> <msgid4@mail.example.com>")},
	{Key: "X-Long-Header", Value: []byte(tooLongValue)},
}

// tooLongValue has no spaces, so HeaderEntry.Encode cannot fold on a word
// boundary and must fall back to a hard break at the RFC 5322 998-octet
// line limit: the first line takes as many bytes as the 998-octet limit
// allows after "X-Long-Header: " (998-15 = 983), and the remainder goes
// on a single continuation line.
const tooLongValue = `nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken-nospacetoken`

var encHeadersWant = "MIME-Version: 1.0\r\n" +
	"References: <msgid1@mail.example.com> <msgid2@mail.example.com>\r\n" +
	"    <msgid3@mail.example.com> <msgid4@mail.example.com>\r\n" +
	"X-Long-Header: " + tooLongValue[:983] + "\r\n" +
	"    " + tooLongValue[983:] + "\r\n" +
	"\r\n"

func TestHeaderEncode(t *testing.T) {
	h := new(Header)
	for _, header := range headers {
		h.Add(header.Key, header.Value)
	}
	buf := new(bytes.Buffer)
	if _, err := h.Encode(buf); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if got := buf.String(); got != encHeadersWant {
		t.Errorf("Encode: got:\n%q\nwant:\n%q", got, encHeadersWant)
	}
}

func TestHeaderGetAllAndDel(t *testing.T) {
	h := new(Header)
	h.Add("To", []byte("a@example.com"))
	h.Add("To", []byte("b@example.com"))
	h.Add("Subject", []byte("hi"))

	if got := h.GetAll("To"); len(got) != 2 {
		t.Fatalf("GetAll(To) = %v, want 2 entries", got)
	}
	if got := string(h.Get("Subject")); got != "hi" {
		t.Errorf("Get(Subject) = %q, want %q", got, "hi")
	}

	h.Del("To")
	if got := h.GetAll("To"); len(got) != 0 {
		t.Errorf("GetAll(To) after Del = %v, want empty", got)
	}
	if got := h.Get("Subject"); string(got) != "hi" {
		t.Errorf("Get(Subject) after unrelated Del = %q, want %q", got, "hi")
	}
}

var keyTests = []struct {
	in, out string
}{
	{"content-id", "Content-ID"},
	{"Content-Id", "Content-ID"},
	{"never-heard-of-it", "Never-Heard-Of-It"},
	{"busted--key", "Busted--Key"},
	{"odd-_key_", "Odd-_key_"},
	{"dkim-signature", "DKIM-Signature"},
	{"mime-version", "MIME-Version"},
}

func TestCanonicalKey(t *testing.T) {
	for _, test := range keyTests {
		t.Run(test.in, func(t *testing.T) {
			if got := CanonicalKey([]byte(test.in)); got != Key(test.out) {
				t.Errorf("CanonicalKey(%q)=%q, want %q", test.in, got, test.out)
			}
		})
	}
}

func BenchmarkCanonicalKey(b *testing.B) {
	hdr := []byte("Content-Id")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		CanonicalKey(hdr)
	}
}
