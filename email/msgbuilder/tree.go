package msgbuilder

import (
	"io"

	"mimekiln/email"
)

// TreeNode is a decoded MIME part tree ready to be serialized back to wire
// form: the structure mimeparser.Consumer callbacks would naturally build
// up while walking a parsed message, generalized from the teacher's
// msgbuilder.TreeNode so it composes the output of mimeparser instead of
// spilld's own compose-a-new-message-from-a-template domain model (which
// is out of scope: this package serializes an already-decided tree, it
// does not decide content).
type TreeNode struct {
	Header  PartHeader
	Content io.ReadSeeker // nil for multipart containers
	Kids    []TreeNode
}

// PartHeader is the subset of a part's headers msgbuilder rewrites on
// serialization; every other header the part carried travels in Extra and
// is written after these fields.
type PartHeader struct {
	ContentType             string // includes params, e.g. "text/plain; charset=utf-8"
	ContentID               string // bare id, no surrounding "<...>"
	ContentDisposition      string // includes params, e.g. "attachment; filename=foo.png"
	ContentTransferEncoding string

	// Extra carries any additional headers the original part had (e.g.
	// Content-Description, X-Attachment-Id). msgbuilder re-encodes their
	// values through email/registry and email/mimewriter, so spelling and
	// folding on output can differ from the original bytes.
	Extra []email.HeaderEntry
}

// ForEach visits every header msgbuilder will emit for this part, in a
// fixed order matching the teacher's PartHeader.ForEach.
func (hdr PartHeader) ForEach(fn func(key email.Key, val string)) {
	if hdr.ContentDisposition != "" {
		fn("Content-Disposition", hdr.ContentDisposition)
	}
	if hdr.ContentID != "" {
		fn("Content-ID", "<"+hdr.ContentID+">")
	}
	if hdr.ContentTransferEncoding != "" && hdr.ContentTransferEncoding != "7bit" {
		fn("Content-Transfer-Encoding", hdr.ContentTransferEncoding)
	}
	fn("Content-Type", hdr.ContentType)
	for _, e := range hdr.Extra {
		fn(e.Key, string(e.Value))
	}
}
