// Command mimewalk feeds a MIME message on stdin through email/mimeparser
// and prints the resulting part tree, exercising header decoding, charset
// conversion and multipart recursion end to end. Its flag-based CLI style
// follows cmd/spilld/main.go.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"mimekiln/email/mimehead"
	"mimekiln/email/mimeparser"
)

type treePrinter struct {
	mimeparser.BaseConsumer
	w       io.Writer
	showRaw bool
}

func (p *treePrinter) StartMessage() {
	fmt.Fprintln(p.w, "message")
}

func (p *treePrinter) EndMessage() {
	fmt.Fprintln(p.w, "end message")
}

func (p *treePrinter) StartPart(partNum string, headers *mimehead.StructuredHeaders) {
	depth := strings.Count(partNum, ".") + strings.Count(partNum, "$")
	indent := strings.Repeat("  ", depth+1)
	ct := headers.ContentType()
	label := partNum
	if label == "" {
		label = "(root)"
	}
	fmt.Fprintf(p.w, "%spart %s: %s/%s\n", indent, label, ct.MediaType, ct.Subtype)
	if p.showRaw {
		headers.ForEach(func(e mimehead.Entry) {
			fmt.Fprintf(p.w, "%s  %s: %v\n", indent, e.Name, e.Value)
		})
	}
}

func (p *treePrinter) EndPart(partNum string) {}

func (p *treePrinter) DeliverPartData(partNum string, data interface{}) {
	switch v := data.(type) {
	case string:
		fmt.Fprintf(p.w, "    [%s] %d chars\n", partNum, len(v))
	case []byte:
		fmt.Fprintf(p.w, "    [%s] %d bytes\n", partNum, len(v))
	}
}

func main() {
	log.SetFlags(0)

	flagPruneAt := flag.String("prune", "", "report only this part number and the parts beneath it (empty means every part)")
	flagShowRaw := flag.Bool("raw", false, "print every decoded header value under each part")
	flagCharset := flag.String("charset", "", "charset to use when a part's Content-Type omits one")
	flagDecode := flag.Bool("decode", true, "decode Content-Transfer-Encoding before printing body sizes")

	flag.Parse()

	opts := mimeparser.DefaultOptions()
	opts.PruneAt = *flagPruneAt
	opts.Charset = *flagCharset
	opts.StrFormat = mimeparser.StrUnicode
	if *flagDecode {
		opts.BodyFormat = mimeparser.BodyDecode
	}
	opts.OnError = func(err error) {
		log.Printf("mimewalk: %v", err)
	}

	consumer := &treePrinter{w: os.Stdout, showRaw: *flagShowRaw}
	if err := mimeparser.Parse(consumer, os.Stdin, opts); err != nil {
		log.Fatalf("mimewalk: %v", err)
	}
}
