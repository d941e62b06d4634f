// Package transcode recognises ALEPH export text on the clipboard and
// republishes it under a registered clipboard format.
//
// ALEPH document exports start with "FMT   L" and tag exports with
// "008   L". Consumers that understand the ALEPH_DOC / ALEPH_TAG formats can
// then fetch the payload directly instead of sniffing plain text. The
// payload is UTF-8 with CRLF line endings and a trailing CRLF.
package transcode

import "strings"

// Class is the result of classifying clipboard text.
type Class int

const (
	Unclassified Class = iota
	DocumentFormat
	TagFormat
)

// Prefixes and registered format names.
const (
	DocumentPrefix = "FMT   L"
	TagPrefix      = "008   L"

	DocumentFormatName = "ALEPH_DOC"
	TagFormatName      = "ALEPH_TAG"
)

// Classify tests text against the export prefixes. The test is literal and
// case-sensitive; nothing after the prefix is inspected.
func Classify(text string) Class {
	switch {
	case strings.HasPrefix(text, DocumentPrefix):
		return DocumentFormat
	case strings.HasPrefix(text, TagPrefix):
		return TagFormat
	default:
		return Unclassified
	}
}

// FormatName returns the clipboard format the class is published under, or
// "" for Unclassified.
func (c Class) FormatName() string {
	switch c {
	case DocumentFormat:
		return DocumentFormatName
	case TagFormat:
		return TagFormatName
	default:
		return ""
	}
}

func (c Class) String() string {
	switch c {
	case DocumentFormat:
		return "document"
	case TagFormat:
		return "tag"
	default:
		return "unclassified"
	}
}

// Normalize converts line endings for the legacy consumer. Text with no CRLF
// at all has every LF expanded to CRLF; text that already contains a CRLF
// anywhere is left alone, even if it also has bare LFs. Either way the
// result ends with CRLF. Normalize is idempotent.
func Normalize(text string) string {
	if !strings.Contains(text, "\r\n") {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	if !strings.HasSuffix(text, "\r\n") {
		text += "\r\n"
	}
	return text
}

// Encode returns the UTF-8 bytes of text, sized exactly, with no terminator.
// Invalid sequences are replaced with U+FFFD.
func Encode(text string) []byte {
	return []byte(strings.ToValidUTF8(text, "\uFFFD"))
}
