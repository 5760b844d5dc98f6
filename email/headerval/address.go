// Package headerval implements the structured header decoders built on top
// of email/token: address lists, parameter headers (with RFC 2231), the
// Content-Type shape, and RFC 5322 dates.
package headerval

import (
	"strings"

	"mimekiln/email"
	"mimekiln/email/token"
)

// addressDelims is the delimiter set §4.3 specifies for the address-list
// tokenizer.
const addressDelims = ":,;<>@"

// DecodeAddressList decodes an address-list header value (To, From, Cc,
// Resent-To, etc.) into an ordered sequence of addresses and groups mixed,
// per RFC 5322's address/group grammar (restructured, per spec.md §4.3,
// from the teacher's addrParser recursive descent into a token-driven
// state machine over email/token's output).
func DecodeAddressList(value string) []email.AddressOrGroup {
	toks := token.Tokenize(value, addressDelims, token.Options{
		QuotedString: true,
		Comments:     true,
		RFC2047:      true,
	})

	var (
		results    []email.AddressOrGroup
		groupAddrs []email.Address
		groupName  string
		inGroup    bool

		name, address string
		inAngle       bool
		needsSpace    bool
	)

	addText := func(text string) {
		if text == "" {
			return
		}
		if needsSpace && !strings.HasPrefix(text, ".") {
			name += " "
		}
		if inAngle {
			address += text
		} else {
			name += text
		}
		needsSpace = true
	}

	commitAddress := func() {
		n := strings.TrimSpace(name)
		a := strings.TrimSpace(address)
		if n != "" || a != "" {
			addr := email.Address{Name: n, Addr: a}
			if inGroup {
				groupAddrs = append(groupAddrs, addr)
			} else {
				results = append(results, email.AddressOrGroup{Addr: &addr})
			}
		}
		name, address = "", ""
		inAngle = false
		needsSpace = false
	}

	closeGroup := func() {
		if inGroup {
			results = append(results, email.AddressOrGroup{Group: &email.Group{
				Name:    groupName,
				Members: groupAddrs,
			}})
		}
		inGroup = false
		groupName = ""
		groupAddrs = nil
	}

	for _, t := range toks {
		switch t.Kind {
		case token.Delimiter:
			switch t.Ch {
			case ':':
				groupName = strings.TrimSpace(name)
				inGroup = true
				name, address = "", ""
				needsSpace = false

			case '<':
				inAngle = true
				needsSpace = false

			case '>':
				inAngle = false
				needsSpace = false

			case '@':
				if !inAngle {
					local := quoteLocalPartIfNeeded(strings.TrimSpace(name))
					address = local + "@"
					name = ""
					inAngle = true
				} else {
					address += "@"
				}
				needsSpace = false

			case ',':
				commitAddress()

			case ';':
				commitAddress()
				closeGroup()
			}

		case token.CommentOpen, token.CommentClose:
			// Comments contribute no text; do not force a following space.

		default:
			addText(t.String())
		}
	}

	commitAddress()
	closeGroup()
	return results
}

// quoteLocalPartIfNeeded wraps a local-part in quotes, escaping '\' and '"',
// if it contains any character RFC 5322 requires quoting for in this
// position.
func quoteLocalPartIfNeeded(local string) string {
	const special = " !()<>[]:;@\\,\""
	if !strings.ContainsAny(local, special) {
		return local
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range local {
		if r == '\\' || r == '"' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
