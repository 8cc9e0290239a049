package mailbox

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Attachment is a named file part lifted out of a MIME message.
type Attachment struct {
	Filename string
	Data     []byte
}

// Message carries the header fields the template matcher cares about plus the
// attachment parts. Header values are kept raw; matching is substring-based.
type Message struct {
	From        string
	To          string
	Cc          string
	Subject     string
	Attachments []Attachment
}

// ParseMessage decodes a raw RFC822 message into headers and attachments.
// Parts without a filename are ignored; the pipeline only consumes files.
func ParseMessage(raw []byte) (Message, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return Message{}, fmt.Errorf("read message: %w", err)
	}

	msg := Message{
		From:    mr.Header.Get("From"),
		To:      mr.Header.Get("To"),
		Cc:      mr.Header.Get("Cc"),
		Subject: mr.Header.Get("Subject"),
	}
	if subject, err := mr.Header.Subject(); err == nil && subject != "" {
		msg.Subject = subject
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep whatever parts decoded cleanly.
			break
		}

		var filename string
		switch h := part.Header.(type) {
		case *mail.AttachmentHeader:
			filename, _ = h.Filename()
		case *mail.InlineHeader:
			filename = inlineFilename(h)
		}
		if filename == "" {
			continue
		}

		data, err := io.ReadAll(part.Body)
		if err != nil || len(data) == 0 {
			continue
		}
		msg.Attachments = append(msg.Attachments, Attachment{Filename: filename, Data: data})
	}

	return msg, nil
}

// inlineFilename digs a filename out of an inline part's disposition or
// content-type params. Suppliers regularly send price sheets as inline parts
// rather than proper attachments, so any part carrying a filename is kept.
func inlineFilename(h *mail.InlineHeader) string {
	if _, params, err := mime.ParseMediaType(h.Get("Content-Disposition")); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}
	if _, params, err := h.ContentType(); err == nil {
		if name := params["name"]; name != "" {
			return name
		}
	}
	return ""
}
