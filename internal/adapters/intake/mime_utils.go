package intake

import (
	"errors"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// ParseMessage reads an RFC 5322 message and returns its decoded subject and
// plain-text body. Text/plain parts are concatenated in order, nested
// multiparts included; attachments and other media types are skipped. A message
// without any text part yields an empty body.
func ParseMessage(r io.Reader) (subject, body string, err error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return "", "", err
	}
	defer mr.Close()

	subject, err = mr.Header.Subject()
	if err != nil {
		subject = mr.Header.Get("Subject")
	}

	body, err = extractText(mr)
	if err != nil {
		return "", "", err
	}
	return subject, strings.TrimSpace(body), nil
}

func extractText(mr *mail.Reader) (string, error) {
	var textContent strings.Builder
	sawParts := false

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			// Keep what was read before the malformed part
			if textContent.Len() > 0 || sawParts {
				break
			}
			return "", err
		}
		sawParts = true

		if !isBodyText(part.Header) {
			continue
		}

		partBytes, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		textContent.Write(partBytes)
		textContent.WriteString("\n")
	}

	return textContent.String(), nil
}

// isBodyText accepts text/plain parts and untyped parts that are not
// attachments, since a missing Content-Type defaults to text/plain
func isBodyText(h mail.PartHeader) bool {
	var header message.Header
	switch ph := h.(type) {
	case *mail.InlineHeader:
		header = ph.Header
	case *mail.AttachmentHeader:
		header = ph.Header
	default:
		return false
	}

	if disposition, _, err := header.ContentDisposition(); err == nil && strings.EqualFold(disposition, "attachment") {
		return false
	}

	mediaType, _, err := header.ContentType()
	if err != nil || mediaType == "" {
		return header.Get("Content-Type") == ""
	}
	return strings.EqualFold(mediaType, "text/plain")
}
