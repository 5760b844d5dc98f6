package mimeparser

import "bytes"

// findHeaderEnd implements spec §4.7's header/body split detection: either
// a line break at position 0 (no headers), or the first occurrence of two
// consecutive identical line endings ("\r\n\r\n", "\n\n", or "\r\r"). It
// returns the index where the raw header text ends (the first line ending
// of the pair is part of the header text, the last header line's own
// terminator) and the length of the separator to discard, or idx=-1 if no
// split point has arrived yet.
func findHeaderEnd(buf []byte) (idx, sepLen int) {
	if len(buf) >= 2 && buf[0] == '\r' && buf[1] == '\n' {
		return 0, 2
	}
	if len(buf) >= 1 && buf[0] == '\n' {
		return 0, 1
	}
	if len(buf) >= 1 && buf[0] == '\r' && (len(buf) == 1 || buf[1] != '\n') {
		return 0, 1
	}
	for i := 0; i < len(buf); i++ {
		switch {
		case i+3 < len(buf) && buf[i] == '\r' && buf[i+1] == '\n' && buf[i+2] == '\r' && buf[i+3] == '\n':
			return i + 2, 2
		case i+1 < len(buf) && buf[i] == '\n' && buf[i+1] == '\n':
			return i + 1, 1
		case i+1 < len(buf) && buf[i] == '\r' && buf[i+1] == '\r':
			return i + 1, 1
		}
	}
	return -1, 0
}

// splitHeaderLines splits raw header text into logical lines per spec
// §4.7's "Header block parsing": split at a line-ending pattern that does
// NOT consume a following space or tab (a continuation keeps its leading
// newline embedded in the line, to be stripped later if configured).
func splitHeaderLines(raw []byte) [][]byte {
	var lines [][]byte
	start := 0
	i := 0
	for i < len(raw) {
		if raw[i] == '\r' || raw[i] == '\n' {
			nlLen := 1
			if raw[i] == '\r' && i+1 < len(raw) && raw[i+1] == '\n' {
				nlLen = 2
			}
			next := i + nlLen
			if next < len(raw) && (raw[next] == ' ' || raw[next] == '\t') {
				i = next
				continue
			}
			lines = append(lines, raw[start:i])
			start = next
			i = next
			continue
		}
		i++
	}
	if start < len(raw) {
		lines = append(lines, raw[start:])
	}
	return lines
}

// stripMboxEnvelope removes a leading mbox "From " envelope line, if
// present, per spec §3's rawHeaderText definition.
func stripMboxEnvelope(raw []byte) []byte {
	if !bytes.HasPrefix(raw, []byte("From ")) {
		return raw
	}
	i := bytes.IndexAny(raw, "\r\n")
	if i < 0 {
		return raw
	}
	if raw[i] == '\r' && i+1 < len(raw) && raw[i+1] == '\n' {
		i++
	}
	return raw[i+1:]
}

// removeCRLF strips embedded '\r' and '\n' bytes, used when
// Options.StripContinuations is set (the default).
func removeCRLF(value []byte) []byte {
	if bytes.IndexAny(value, "\r\n") < 0 {
		return value
	}
	out := make([]byte, 0, len(value))
	for _, b := range value {
		if b != '\r' && b != '\n' {
			out = append(out, b)
		}
	}
	return out
}

// conditionPacket implements spec §4.7's packet conditioning: trim buf so
// it ends at or before the last newline, withholding a lone trailing '\r'
// (it might be the start of a split '\r\n'). held is the suffix to carry
// into the next call via Parser.hold; if no newline has appeared at all,
// the whole buffer is held.
func conditionPacket(buf []byte) (ready, held []byte) {
	if len(buf) == 0 {
		return nil, nil
	}
	end := len(buf)
	if buf[end-1] == '\r' {
		end--
	}
	if end == 0 {
		return nil, buf
	}
	j := -1
	for i := end - 1; i >= 0; i-- {
		if buf[i] == '\n' || buf[i] == '\r' {
			j = i
			break
		}
	}
	if j < 0 {
		return nil, buf
	}
	return buf[:j+1], buf[j+1:]
}
