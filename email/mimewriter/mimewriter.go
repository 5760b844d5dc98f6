// Package mimewriter implements the header emitter described in spec §4.8:
// a line-folding output engine with preferred and emergency breakpoints,
// phrase/quotable/address/date writers, and an RFC 2047 encoder that picks
// whichever of base64 or quoted-printable is shorter.
//
// It is grounded on email.HeaderEntry.Encode's margin/continuation/padding
// scheme (email/header.go), generalized from "fold at the nearest space"
// to a writer-chosen preferred breakpoint plus an emergency fallback, and on
// third_party/imf/addr.go's FormatAddress/EncodeAddressSpec, generalized
// from "always one encoding" to the shorter-of-base64-or-QP chunked
// encoder spec.md §4.8 requires.
package mimewriter

import (
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"mimekiln/email"
)

// Sink is the destination for emitted header lines. A plain io.Writer
// satisfies it; the sink receives only Write calls and has no end-of-input
// hook.
type Sink interface {
	io.Writer
}

const (
	defaultSoft = 78
	defaultHard = 332
	minSoft     = 30
	maxSoft     = 900
	maxHard     = 998
)

// Emitter builds one logical header at a time, folding into CRLF-terminated
// lines within soft/hard margins, then writes committed lines to Sink.
type Emitter struct {
	Sink     Sink
	UseASCII bool

	soft int
	hard int

	currentLine []byte
	breakAt     int // index of the last preferred breakpoint in currentLine, -1 if none
}

// Option configures an Emitter at construction.
type Option func(*Emitter)

// SoftMargin sets the preferred line-length margin, clamped to [30, 900].
func SoftMargin(n int) Option {
	return func(e *Emitter) {
		if n < minSoft {
			n = minSoft
		}
		if n > maxSoft {
			n = maxSoft
		}
		e.soft = n
	}
}

// HardMargin sets the emergency line-length margin, clamped to [soft, 998].
func HardMargin(n int) Option {
	return func(e *Emitter) {
		e.hard = n
	}
}

// NewEmitter builds an Emitter writing committed lines to sink.
func NewEmitter(sink Sink, opts ...Option) *Emitter {
	e := &Emitter{
		Sink:     sink,
		UseASCII: true,
		soft:     defaultSoft,
		hard:     defaultHard,
		breakAt:  -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.hard < e.soft {
		e.hard = e.soft
	}
	if e.hard > maxHard {
		e.hard = maxHard
	}
	return e
}

// reserveSpace implements §4.8's reserveSpace(text): make room for n more
// bytes in the current line by committing a fold if necessary. It reports
// an error if n cannot possibly fit even after folding at the hard margin.
func (e *Emitter) reserveSpace(n int) error {
	if len(e.currentLine)+n <= e.soft {
		return nil
	}
	if e.breakAt >= 0 {
		e.commitLine(e.breakAt)
		if len(e.currentLine)+n <= e.soft {
			return nil
		}
	}
	if len(e.currentLine)+n <= e.hard {
		return nil
	}
	e.commitLine(len(e.currentLine))
	if len(e.currentLine)+n <= e.hard {
		return nil
	}
	return fmt.Errorf("mimewriter: token of length %d cannot fit within hard margin %d", n, e.hard)
}

// AddText implements §4.8's addText(text, mayBreakAfter): reserve room,
// append the literal text, and optionally record a preferred breakpoint
// after it.
func (e *Emitter) AddText(text string, mayBreakAfter bool) error {
	if err := e.reserveSpace(len(text)); err != nil {
		return err
	}
	e.currentLine = append(e.currentLine, text...)
	if mayBreakAfter {
		if len(e.currentLine) == 0 || e.currentLine[len(e.currentLine)-1] != ' ' {
			e.currentLine = append(e.currentLine, ' ')
		}
		e.breakAt = len(e.currentLine)
	}
	return nil
}

// commitLine emits currentLine[0:count] (or the whole line if count is
// negative, signalling end-of-header). For a fold (count not negative) the
// remainder, possibly empty, starts a new continuation line with a leading
// folding space; at end-of-header the line is reset to empty.
func (e *Emitter) commitLine(count int) {
	cont := count >= 0
	if count < 0 || count > len(e.currentLine) {
		count = len(e.currentLine)
	}
	head := strings.TrimRight(string(e.currentLine[:count]), " \t")
	io.WriteString(e.Sink, head)
	io.WriteString(e.Sink, "\r\n")

	rest := e.currentLine[count:]
	rest = []byte(strings.TrimLeft(string(rest), " \t"))
	if cont {
		e.currentLine = append([]byte{' '}, rest...)
	} else {
		e.currentLine = e.currentLine[:0]
	}
	e.breakAt = -1
}

// EndHeader flushes the final partial line, terminating the header.
func (e *Emitter) EndHeader() {
	e.commitLine(-1)
}

// quoteChars escapes '\' and '"' and wraps text in a quoted-string.
func quoteChars(text string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\\' || c == '"' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

func isQuoted(text string) bool {
	return len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"'
}

// AddQuotable implements §4.8's addQuotable: wrap text in a quoted-string,
// escaping '\' and '"', if it isn't already quoted and contains any
// character of qchars; then delegate to AddText.
func (e *Emitter) AddQuotable(text string, qchars string, mayBreakAfter bool) error {
	if !isQuoted(text) && strings.ContainsAny(text, qchars) {
		text = quoteChars(text)
	}
	return e.AddText(text, mayBreakAfter)
}

// collapseWhitespace collapses every whitespace run to a single space.
func collapseWhitespace(text string) string {
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}

func hasNonASCII(text string) bool {
	for _, r := range text {
		if r > 0x7E || r < 0x20 {
			return true
		}
	}
	return false
}

// AddPhrase implements §4.8's addPhrase: collapse whitespace, route through
// the RFC 2047 encoder if non-ASCII and UseASCII is set, otherwise try
// addQuotable on the whole phrase and fall back to word-by-word quoting if
// that overflows.
func (e *Emitter) AddPhrase(text string, qchars string, mayBreakAfter bool) error {
	text = collapseWhitespace(text)
	if text == "" {
		return nil
	}
	if e.UseASCII && hasNonASCII(text) {
		return e.encodeRFC2047Phrase(text, mayBreakAfter)
	}

	hadBreak := e.breakAt >= 0
	saveLine := append([]byte(nil), e.currentLine...)
	saveBreak := e.breakAt
	if err := e.AddQuotable(text, qchars, mayBreakAfter); err == nil {
		if !hadBreak && !strings.ContainsAny(text, qchars) {
			if i := strings.LastIndexByte(text, ' '); i >= 0 {
				e.breakAt = len(saveLine) + i + 1
			}
		}
		return nil
	}
	// Overflowed: restore and fall back to word-by-word quoting.
	e.currentLine = saveLine
	e.breakAt = saveBreak

	words := strings.Split(text, " ")
	for i, w := range words {
		brk := mayBreakAfter
		if i < len(words)-1 {
			brk = true
		}
		if err := e.AddQuotable(w, qchars, brk); err != nil {
			return err
		}
	}
	return nil
}

// AddUnstructured implements §4.8's Unstructured = addPhrase(text, "",
// false): never quoted, but RFC 2047-encoded when non-ASCII.
func (e *Emitter) AddUnstructured(text string) error {
	return e.AddPhrase(text, "", false)
}

// b64Prelude is the fixed "=?utf-8?B?" / "=?utf-8?Q?" prefix length used to
// decide whether enough line remains to start a new encoded-word.
const b64Prelude = len(`=?utf-8?B?`)

// forbiddenQP reports whether b must be percent-style-escaped by the
// quoted-printable variant RFC 2047 uses inside an encoded-word.
func forbiddenQP(b byte) bool {
	if b < 0x20 || b >= 0x7F {
		return true
	}
	switch b {
	case '=', '?', '_', '(', ')', '"':
		return true
	}
	return false
}

// encodeRFC2047Phrase implements §4.8's encodeRFC2047Phrase: encode text as
// UTF-8 bytes, tracking running base64 and quoted-printable length
// estimates, and emit encoded-words using whichever is shorter, splitting
// only at UTF-8 character boundaries.
func (e *Emitter) encodeRFC2047Phrase(text string, mayBreakAfter bool) error {
	data := []byte(text)
	for len(data) > 0 {
		if e.soft-len(e.currentLine) < b64Prelude+10 {
			e.commitLine(len(e.currentLine))
		}
		budget := e.hard - len(e.currentLine) - b64Prelude - len(`?=`)
		if budget < 4 {
			e.commitLine(len(e.currentLine))
			budget = e.hard - len(e.currentLine) - b64Prelude - len(`?=`)
		}

		b64Len, qpLen := 0, 0
		cut := len(data)
		for i := 0; i < len(data); i++ {
			b64Len = ((i + 1) + 2) / 3 * 4
			if forbiddenQP(data[i]) {
				qpLen += 3
			} else {
				qpLen++
			}
			if b64Len > budget && qpLen > budget {
				cut = i
				// Back up to the nearest UTF-8 start byte.
				for cut > 0 && isUTF8Continuation(data[cut]) {
					cut--
				}
				break
			}
		}
		if cut == 0 {
			cut = 1
			for cut < len(data) && isUTF8Continuation(data[cut]) {
				cut++
			}
		}

		chunk := data[:cut]
		data = data[cut:]

		word := encodeOneWord(chunk)
		brk := mayBreakAfter || len(data) > 0
		if err := e.AddText(word, brk); err != nil {
			return err
		}
	}
	return nil
}

func isUTF8Continuation(b byte) bool {
	return b >= 0x80 && b < 0xC0
}

// encodeOneWord encodes chunk as a single =?utf-8?B?...?= or =?utf-8?Q?...?=
// encoded-word, whichever form is shorter.
func encodeOneWord(chunk []byte) string {
	b64 := base64.StdEncoding.EncodeToString(chunk)
	qp := encodeQP(chunk)
	if len(qp) <= len(b64) {
		return "=?utf-8?Q?" + qp + "?="
	}
	return "=?utf-8?B?" + b64 + "?="
}

func encodeQP(chunk []byte) string {
	var b strings.Builder
	for _, c := range chunk {
		switch {
		case c == ' ':
			b.WriteByte('_')
		case forbiddenQP(c):
			fmt.Fprintf(&b, "=%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// AddAddress implements §4.8's addAddress.
func (e *Emitter) AddAddress(a email.Address) error {
	if a.Name != "" {
		// Reserve an upfront estimate so a name+address pair that would
		// overflow the current line folds before the name rather than
		// mid-way through it. Informational only: ignore the error here,
		// since the individual AddPhrase/AddQuotable/AddText calls below
		// still enforce the real margins.
		_ = e.reserveSpace(len(a.Name) + len(a.Addr) + 3)
		if err := e.AddPhrase(a.Name, ",()<>:;.\"", false); err != nil {
			return err
		}
		if err := e.AddText("<", false); err != nil {
			return err
		}
	}
	local, domain := splitAtLast(a.Addr, '@')
	if err := e.AddQuotable(local, `()<>[]:;@\,"!`, false); err != nil {
		return err
	}
	tail := "@" + domain
	if a.Name != "" {
		tail += ">"
	}
	return e.AddText(tail, false)
}

func splitAtLast(addr string, sep byte) (local, domain string) {
	i := strings.LastIndexByte(addr, sep)
	if i < 0 {
		return addr, ""
	}
	return addr[:i], addr[i+1:]
}

// AddAddresses implements §4.8's addAddresses: interpose ", " between
// entries, with a preferred break at each comma, expanding groups as
// "name : memberlist ;".
func (e *Emitter) AddAddresses(list []email.AddressOrGroup) error {
	for i, item := range list {
		if i > 0 {
			if err := e.AddText(",", true); err != nil {
				return err
			}
		}
		switch {
		case item.Addr != nil:
			if err := e.AddAddress(*item.Addr); err != nil {
				return err
			}
		case item.Group != nil:
			if err := e.AddPhrase(item.Group.Name, ",()<>:;.\"", false); err != nil {
				return err
			}
			if err := e.AddText(":", false); err != nil {
				return err
			}
			for j, m := range item.Group.Members {
				if j > 0 {
					if err := e.AddText(",", true); err != nil {
						return err
					}
				}
				if err := e.AddAddress(m); err != nil {
					return err
				}
			}
			if err := e.AddText(";", false); err != nil {
				return err
			}
		}
	}
	return nil
}

// weekdays and months are the fixed tables AddDate formats against.
var weekdays = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
var months = [...]string{"", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// AddDate implements §4.8's date writer: validate the instant (reject an
// invalid time or a year outside 1900-9999), then format as
// "Dow, D Mon YYYY HH:MM:SS +-HHMM" using t's own zone offset, added as a
// single unbreakable atom.
func (e *Emitter) AddDate(t time.Time) error {
	if t.IsZero() {
		return fmt.Errorf("mimewriter: cannot encode a zero-value date")
	}
	if t.Year() < 1900 || t.Year() > 9999 {
		return fmt.Errorf("mimewriter: date year %d out of range [1900,9999]", t.Year())
	}
	_, offsetSec := t.Zone()
	offsetMin := offsetSec / 60
	sign := byte('+')
	if offsetMin < 0 {
		sign = '-'
		offsetMin = -offsetMin
	}
	s := fmt.Sprintf("%s, %d %s %04d %02d:%02d:%02d %c%02d%02d",
		weekdays[int(t.Weekday())], t.Day(), months[int(t.Month())], t.Year(),
		t.Hour(), t.Minute(), t.Second(), sign, offsetMin/60, offsetMin%60)
	return e.AddText(s, false)
}

// StructuredByName implements §4.8's "structured header by name": look up a
// registered encoder and delegate, or fall back to capitalizing the header
// name and writing the value as unstructured text.
func (e *Emitter) StructuredByName(preferredName string, value interface{}, encode func(*Emitter, interface{}) error) error {
	name := preferredName
	if encode == nil {
		// Capitalize every lower-case letter that starts a word.
		b := []byte(name)
		for i, c := range b {
			prevWord := false
			if i > 0 {
				p := b[i-1]
				prevWord = p == '_' || (p >= '0' && p <= '9') || (p >= 'a' && p <= 'z') || (p >= 'A' && p <= 'Z')
			}
			if !prevWord && c >= 'a' && c <= 'z' {
				b[i] = c - ('a' - 'A')
			}
		}
		name = string(b)
	}
	if err := e.AddText(name+":", true); err != nil {
		return err
	}
	if encode != nil {
		if err := encode(e, value); err != nil {
			return err
		}
	} else if s, ok := value.(string); ok {
		if err := e.AddUnstructured(s); err != nil {
			return err
		}
	} else {
		return fmt.Errorf("mimewriter: cannot encode header %q: unknown value type %T", preferredName, value)
	}
	e.EndHeader()
	return nil
}

// SortedKeys is a small helper used by Content-Type/parameter encoders to
// produce deterministic parameter ordering on output.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
