// Package email holds the wire-level vocabulary shared by every MIME
// decoding and encoding package in this module: header keys, raw header
// storage, and the address/group value shapes produced by the address-list
// decoder. Nothing in this package decodes structured values; it only stores
// and canonicalizes the raw bytes.
package email

// Key is a canonical MIME header field name, e.g. "Content-Type".
//
// Use CanonicalKey to build a Key from raw header bytes.
type Key string

// asciiLower lowercases a through z in place.
func asciiLower(data []byte) {
	for i, b := range data {
		if b >= 'A' && b <= 'Z' {
			data[i] = b + ('a' - 'A')
		}
	}
}

// CanonicalKey builds a MIME header key out of raw header-line bytes.
// It works on a lower-cased copy of keyBytes and leaves keyBytes unchanged.
//
// A fixed table of well-known header spellings is consulted first (built
// from frequency counts over real mail, matching the historical spellings
// RFC 5322/2045/5536/3798 readers expect, e.g. "DKIM-Signature" rather than
// "Dkim-Signature"). Anything not in the table falls back to capitalizing
// the letter following each '-'.
func CanonicalKey(keyBytes []byte) Key {
	b := make([]byte, len(keyBytes))
	copy(b, keyBytes)
	asciiLower(b)

	if k, ok := wellKnownKeys[string(b)]; ok {
		return k
	}

	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			if i == 0 || b[i-1] == '-' {
				b[i] -= 'a' - 'A'
			}
		}
	}
	return Key(b)
}

// wellKnownKeys lists the header spellings CanonicalKey special-cases,
// taken from the headers spec.md's registry (§4.6) explicitly enumerates
// plus the handful the generic title-case fallback would otherwise mangle
// ("MIME-Version", "DKIM-Signature", header names ending "-ID").
var wellKnownKeys = map[string]Key{
	"subject":                        "Subject",
	"date":                           "Date",
	"to":                             "To",
	"from":                           "From",
	"cc":                             "CC",
	"bcc":                            "Bcc",
	"content-id":                     "Content-ID",
	"content-disposition":            "Content-Disposition",
	"content-length":                 "Content-Length",
	"content-type":                   "Content-Type",
	"content-transfer-encoding":      "Content-Transfer-Encoding",
	"content-description":            "Content-Description",
	"message-id":                     "Message-ID",
	"in-reply-to":                    "In-Reply-To",
	"references":                     "References",
	"mime-version":                   "MIME-Version",
	"reply-to":                       "Reply-To",
	"sender":                         "Sender",
	"comments":                       "Comments",
	"keywords":                       "Keywords",
	"user-agent":                     "User-Agent",
	"approved":                       "Approved",
	"delivered-to":                   "Delivered-To",
	"return-path":                    "Return-Path",
	"return-receipt-to":              "Return-Receipt-To",
	"disposition-notification-to":    "Disposition-Notification-To",
	"mail-reply-to":                  "Mail-Reply-To",
	"mail-followup-to":               "Mail-Followup-To",
	"resent-date":                    "Resent-Date",
	"resent-from":                    "Resent-From",
	"resent-sender":                  "Resent-Sender",
	"resent-to":                      "Resent-To",
	"resent-cc":                      "Resent-Cc",
	"resent-bcc":                     "Resent-Bcc",
	"resent-reply-to":                "Resent-Reply-To",
	"resent-message-id":              "Resent-Message-ID",
	"expires":                        "Expires",
	"injection-date":                 "Injection-Date",
	"nntp-posting-date":              "NNTP-Posting-Date",
	"dkim-signature":                 "DKIM-Signature",
	"arc-seal":                       "ARC-Seal",
	"arc-message-signature":          "ARC-Message-Signature",
	"arc-authentication-results":     "ARC-Authentication-Results",
	"authentication-results":        "Authentication-Results",
	"received":                       "Received",
	"received-spf":                   "Received-SPF",
	"x-mailer":                       "X-Mailer",
	"x-priority":                     "X-Priority",
	"x-originating-ip":               "X-Originating-IP",
	"list-id":                        "List-ID",
	"list-unsubscribe":               "List-Unsubscribe",
	"list-unsubscribe-post":          "List-Unsubscribe-Post",
	"precedence":                     "Precedence",
}
