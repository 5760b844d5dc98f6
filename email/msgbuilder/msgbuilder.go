// Package msgbuilder composes a decoded MIME part tree (a TreeNode, as a
// mimeparser.Consumer would build while walking a parsed message) back
// into wire form.
//
// It is adapted from the teacher's email/msgbuilder package: EncodeContent,
// randBoundary and lineBreakWriter all follow the teacher's
// shape closely. WriteNode and Build no longer delegate header formatting
// to stdlib mime/textproto the way the teacher does; instead they decode
// each header's value and hand it to email/registry's encoder running
// behind email/mimewriter.Emitter, so the same §4.6/§4.8 machinery that
// decodes a message also re-encodes one, RFC 2047/line-folding included.
// Dropped from the teacher: BuildTree and its helpers, which decide *what*
// a message should contain (body vs. related vs. attachment classification)
// — that is composition policy, out of scope per spec.md §1's Non-goals.
// DKIM signing is dropped for the same reason (out of scope; spec.md §1
// excludes DKIM outright).
package msgbuilder

import (
	"encoding/base64"
	"fmt"
	"io"
	"math/rand"
	"mime/quotedprintable"

	"crawshaw.io/iox"
	"mimekiln/email"
	"mimekiln/email/headerval"
	"mimekiln/email/mimewriter"
	"mimekiln/email/registry"
)

// Builder serializes a TreeNode into wire-format MIME bytes.
//
// Filer backs the single buffer that Build spools the whole serialized body
// into, the way the teacher's Builder does; parts are not buffered
// separately. nil is fine for small messages and uses an in-memory buffer
// instead.
type Builder struct {
	Filer *iox.Filer
}

// Build writes headers followed by the serialized root node to w, the way
// msgbuilder.Builder.Build does for the teacher's email.Msg. headers is the
// message's own top-level header block (To/From/Subject/Date/...); Build
// adds MIME-Version and merges in root's headers, exactly as the teacher's
// write does via hdr.Del/hdr.Add.
func (b *Builder) Build(w io.Writer, headers *email.Header, root *TreeNode) error {
	body := b.bufferFile()
	defer body.Close()

	if err := b.WriteNode(body, root); err != nil {
		return fmt.Errorf("msgbuilder.Build: %v", err)
	}

	headers.Del("MIME-Version")
	headers.Add("MIME-Version", []byte("1.0"))
	root.Header.ForEach(func(key email.Key, val string) {
		headers.Del(key)
		if val != "" {
			headers.Add(key, []byte(val))
		}
	})

	if _, err := body.Seek(0, 0); err != nil {
		return fmt.Errorf("msgbuilder.Build: %v", err)
	}

	if err := encodeHeaderBlock(w, headers); err != nil {
		return fmt.Errorf("msgbuilder.Build: %v", err)
	}
	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("msgbuilder.Build: %v", err)
	}
	return nil
}

// encodeHeaderBlock writes every distinct header in h through the §4.6
// registry and the §4.8 emitter, then the blank line that terminates a
// header block. A header with no registered entry falls back to
// Emitter.StructuredByName's generic path: capitalize the name, write the
// raw value as unstructured text (still RFC 2047-encoded if non-ASCII).
func encodeHeaderBlock(w io.Writer, h *email.Header) error {
	e := mimewriter.NewEmitter(w)
	seen := make(map[email.Key]bool, len(h.Entries))
	for _, entry := range h.Entries {
		if seen[entry.Key] {
			continue
		}
		seen[entry.Key] = true

		raw := h.GetAll(entry.Key)
		preferred := string(entry.Key)
		var value interface{} = string(raw[0])
		var enc registry.Encoder

		if reg := registry.Lookup(string(entry.Key)); reg != nil {
			preferred = reg.PreferredName
			v, err := reg.Decode(raw)
			if err != nil {
				return fmt.Errorf("msgbuilder: decoding %s: %v", entry.Key, err)
			}
			value = v
			enc = reg.Encode
		}

		if err := e.StructuredByName(preferred, value, enc); err != nil {
			return fmt.Errorf("msgbuilder: encoding %s: %v", entry.Key, err)
		}
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}

// partHeaderToEmailHeader adapts a PartHeader's fixed MIME fields plus its
// Extra headers into the generic email.Header shape encodeHeaderBlock
// expects, preserving PartHeader.ForEach's field order.
func partHeaderToEmailHeader(hdr PartHeader) *email.Header {
	h := &email.Header{}
	hdr.ForEach(func(key email.Key, val string) {
		if val != "" {
			h.Add(key, []byte(val))
		}
	})
	return h
}

// spoolFile is the subset of iox.BufferFile's interface Build needs; a
// plain in-memory implementation backs it when no Filer is configured.
type spoolFile interface {
	io.ReadWriteSeeker
	Close() error
}

func (b *Builder) bufferFile() spoolFile {
	if b.Filer != nil {
		return b.Filer.BufferFile(0)
	}
	return &memSpool{}
}

// WriteNode writes node (a leaf part or a multipart container) to w: the
// part's own header block (via encodeHeaderBlock), then either its content
// or its kids, boundary-delimited per RFC 2046.
func (b *Builder) WriteNode(w io.Writer, node *TreeNode) error {
	var boundary string
	if node.Content == nil {
		ct := headerval.DecodeContentType(node.Header.ContentType)
		boundary = ct.Params["boundary"]
		if boundary == "" {
			boundary = randBoundary()
			node.Header.ContentType = node.Header.ContentType + `; boundary="` + boundary + `"`
		}
	}

	if err := encodeHeaderBlock(w, partHeaderToEmailHeader(node.Header)); err != nil {
		return fmt.Errorf("msgbuilder.WriteNode: %v", err)
	}

	if node.Content != nil {
		return b.writePart(w, node.Header, node.Content)
	}

	for i := range node.Kids {
		if _, err := io.WriteString(w, "--"+boundary+"\r\n"); err != nil {
			return fmt.Errorf("msgbuilder.WriteNode: %v", err)
		}
		if err := b.WriteNode(w, &node.Kids[i]); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "--"+boundary+"--\r\n"); err != nil {
		return fmt.Errorf("msgbuilder.WriteNode: %v", err)
	}
	return nil
}

func (b *Builder) writePart(w io.Writer, hdr PartHeader, content io.ReadSeeker) error {
	return EncodeContent(w, hdr.ContentTransferEncoding, content)
}

// EncodeContent copies content to w, applying the given
// Content-Transfer-Encoding. Supported encodings are "" / "7bit" / "8bit" /
// "binary" (copied unchanged), "quoted-printable", and "base64" (wrapped at 76
// columns, matching the teacher's lineBreakWriter use).
func EncodeContent(w io.Writer, cte string, content io.ReadSeeker) error {
	if _, err := content.Seek(0, 0); err != nil {
		return fmt.Errorf("msgbuilder.EncodeContent: seek failed: %v", err)
	}

	switch cte {
	case "", "7bit", "8bit", "binary":
		if _, err := io.Copy(w, content); err != nil {
			return err
		}
	case "quoted-printable":
		qpw := quotedprintable.NewWriter(w)
		if _, err := io.Copy(qpw, content); err != nil {
			return err
		}
		if err := qpw.Close(); err != nil {
			return err
		}
	case "base64":
		lbw := &lineBreakWriter{w: w, breakAt: 76}
		b64w := base64.NewEncoder(base64.StdEncoding, lbw)
		if _, err := io.Copy(b64w, content); err != nil {
			return err
		}
		if err := b64w.Close(); err != nil {
			return err
		}
		if _, err := lbw.w.Write(crlf); err != nil {
			return err
		}
	default:
		return fmt.Errorf("msgbuilder: unknown content-transfer-encoding: %q", cte)
	}
	_, err := content.Seek(0, 0)
	return err
}

// randBoundary generates a multipart boundary string. '.' is a valid
// boundary byte but not a valid base64 output byte, so bracketing with it
// trivially separates the boundary from base64-encoded part content.
func randBoundary() string {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return "." + base64.StdEncoding.EncodeToString(buf[:]) + "."
}

type lineBreakWriter struct {
	w       io.Writer
	breakAt int
	seen    int
}

func (w *lineBreakWriter) Write(p []byte) (n int, err error) {
	for len(p) > 0 {
		if w.seen == w.breakAt {
			n2, err := w.w.Write(crlf)
			n += n2
			if err != nil {
				return n, err
			}
			w.seen = 0
		}
		toWrite := len(p)
		if toWrite+w.seen > w.breakAt {
			toWrite = w.breakAt - w.seen
		}
		n2, err := w.w.Write(p[:toWrite])
		n += n2
		w.seen += n2
		p = p[n2:]
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

var crlf = []byte{'\r', '\n'}
