package headerval

import (
	"testing"
	"time"
)

func TestDecodeDateRFC5322WithNamedZone(t *testing.T) {
	// spec.md §8 concrete scenario.
	got, ok := DecodeDate("Fri, 21 Nov 1997 09:55:06 -0600")
	if !ok {
		t.Fatal("expected ok=true")
	}
	want := time.Date(1997, 11, 21, 15, 55, 6, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got.UTC(), want)
	}
}

func TestDecodeDateTwoDigitYear(t *testing.T) {
	got, ok := DecodeDate("21 Nov 97 09:55:06 GMT")
	if !ok {
		t.Fatal("expected ok=true")
	}
	if got.UTC().Year() != 1997 {
		t.Errorf("got year %d, want 1997", got.UTC().Year())
	}

	got2, ok := DecodeDate("1 Jan 30 00:00:00 GMT")
	if !ok {
		t.Fatal("expected ok=true")
	}
	if got2.UTC().Year() != 2030 {
		t.Errorf("got year %d, want 2030", got2.UTC().Year())
	}
}

func TestDecodeDateNoDayOfWeek(t *testing.T) {
	got, ok := DecodeDate("21 Nov 1997 09:55:06 -0600")
	if !ok {
		t.Fatal("expected ok=true")
	}
	want := time.Date(1997, 11, 21, 15, 55, 6, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got.UTC(), want)
	}
}

func TestDecodeDateUnknownZoneDefaultsUTC(t *testing.T) {
	got, ok := DecodeDate("21 Nov 1997 09:55:06 ZZZ")
	if !ok {
		t.Fatal("expected ok=true")
	}
	want := time.Date(1997, 11, 21, 9, 55, 6, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got.UTC(), want)
	}
}

func TestDecodeDateMalformed(t *testing.T) {
	if _, ok := DecodeDate("not a date"); ok {
		t.Error("expected ok=false for an unparseable date")
	}
}
