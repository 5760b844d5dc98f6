package mimehead

import (
	"testing"

	"mimekiln/email"
)

func buildHeader(pairs ...string) *email.Header {
	h := &email.Header{}
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Add(email.CanonicalKey([]byte(pairs[i])), []byte(pairs[i+1]))
	}
	return h
}

func TestContentTypeDefaultsWhenAbsent(t *testing.T) {
	h := New(buildHeader("Subject", "hi"), nil, "text/plain")
	ct := h.ContentType()
	if ct.Type != "text/plain" {
		t.Errorf("got %q, want text/plain", ct.Type)
	}
}

func TestContentTypeFromHeader(t *testing.T) {
	h := New(buildHeader("Content-Type", "multipart/mixed; boundary=frontier"), nil, "text/plain")
	ct := h.ContentType()
	if ct.Type != "multipart/mixed" || ct.Params["boundary"] != "frontier" {
		t.Errorf("got %+v", ct)
	}
}

func TestGetDecodesAndCaches(t *testing.T) {
	h := New(buildHeader("Subject", "=?UTF-8?B?w6k=?="), nil, "text/plain")
	v1, ok := h.Get("Subject")
	if !ok {
		t.Fatal("expected Subject to be present")
	}
	strs, ok := v1.([]string)
	if !ok || len(strs) != 1 || strs[0] != "é" {
		t.Fatalf("got %+v", v1)
	}
	if _, cached := h.cache[email.CanonicalKey([]byte("Subject"))]; !cached {
		t.Fatal("expected Subject to be cached after the first Get")
	}
	v2, _ := h.Get("Subject")
	strs2, ok := v2.([]string)
	if !ok || len(strs2) != 1 || strs2[0] != "é" {
		t.Fatalf("second Get: got %+v", v2)
	}
}

func TestSetCharsetClearsCache(t *testing.T) {
	h := New(buildHeader("Subject", "hello"), nil, "text/plain")
	h.Get("Subject")
	h.SetCharset("iso-8859-1")
	if h.Charset() != "iso-8859-1" {
		t.Errorf("got %q", h.Charset())
	}
	if len(h.cache) != 0 {
		t.Errorf("expected cache to be cleared, got %v", h.cache)
	}
}

func TestContentIDUnwrapsBrackets(t *testing.T) {
	h := New(buildHeader("Content-ID", "<abc123@example.com>"), nil, "text/plain")
	if got := h.ContentID(); got != "abc123@example.com" {
		t.Errorf("got %q", got)
	}
}

func TestHasAndSize(t *testing.T) {
	h := New(buildHeader("Subject", "hi", "To", "a@x", "To", "b@y"), nil, "text/plain")
	if !h.Has("Subject") || !h.Has("To") || h.Has("Cc") {
		t.Error("Has is wrong")
	}
	if h.Size() != 2 {
		t.Errorf("got size %d, want 2", h.Size())
	}
	if len(h.GetRawHeader("To")) != 2 {
		t.Errorf("got %d raw To values, want 2", len(h.GetRawHeader("To")))
	}
}

func TestForEachPreferredOrder(t *testing.T) {
	h := New(buildHeader("Subject", "hi", "To", "a@x"), nil, "text/plain")
	var names []string
	h.ForEach(func(e Entry) {
		names = append(names, e.Name)
	})
	if len(names) != 2 || names[0] != "Subject" || names[1] != "To" {
		t.Errorf("got %v", names)
	}
}
