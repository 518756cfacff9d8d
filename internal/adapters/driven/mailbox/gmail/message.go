package gmail

import (
	"encoding/base64"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/feedprism/internal/core/domain"
)

// documentFromMessage converts a full-format Gmail message into a
// domain document.
func documentFromMessage(msg *gmail.Message) *domain.Document {
	doc := &domain.Document{
		ID:         msg.Id,
		Snippet:    msg.Snippet,
		ReceivedAt: time.UnixMilli(msg.InternalDate).UTC(),
	}

	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch strings.ToLower(h.Name) {
			case "subject":
				doc.Subject = h.Value
			case "from":
				doc.Sender, doc.SenderEmail = parseSender(h.Value)
			}
		}
		doc.Text = extractBody(msg.Payload)
	}
	return doc
}

// parseSender splits an RFC 5322 From header into display name and
// address. "Tech Digest <digest@example.com>" or a bare address.
func parseSender(from string) (name, email string) {
	from = strings.TrimSpace(from)

	open := strings.LastIndex(from, "<")
	end := strings.LastIndex(from, ">")
	if open >= 0 && end > open {
		email = strings.TrimSpace(from[open+1 : end])
		name = strings.Trim(strings.TrimSpace(from[:open]), `"`)
		if name == "" {
			name = email
		}
		return name, email
	}
	return from, from
}

// extractBody walks the MIME tree and returns the best text rendering:
// text/plain when present anywhere, stripped text/html otherwise.
func extractBody(payload *gmail.MessagePart) string {
	var plain, html strings.Builder
	collectParts(payload, &plain, &html)

	if plain.Len() > 0 {
		return strings.TrimSpace(plain.String())
	}
	return strings.TrimSpace(stripHTML(html.String()))
}

func collectParts(part *gmail.MessagePart, plain, html *strings.Builder) {
	if part == nil {
		return
	}

	if part.Body != nil && part.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err == nil {
			switch {
			case strings.HasPrefix(part.MimeType, "text/plain"):
				plain.Write(data)
				plain.WriteString("\n")
			case strings.HasPrefix(part.MimeType, "text/html"):
				html.Write(data)
			}
		}
	}

	for _, child := range part.Parts {
		collectParts(child, plain, html)
	}
}

// htmlEntities covers the entities newsletter HTML actually uses.
var htmlEntities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&rsquo;", "'",
	"&mdash;", "-",
)

// stripHTML removes tags and collapses whitespace. Script and style
// bodies are dropped entirely.
func stripHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inTag := false
	skipUntil := ""
	lower := strings.ToLower(s)

	for i := 0; i < len(s); i++ {
		if skipUntil != "" {
			if strings.HasPrefix(lower[i:], skipUntil) {
				i += len(skipUntil) - 1
				skipUntil = ""
			}
			continue
		}

		switch {
		case s[i] == '<':
			inTag = true
			if strings.HasPrefix(lower[i:], "<script") {
				skipUntil = "</script>"
			} else if strings.HasPrefix(lower[i:], "<style") {
				skipUntil = "</style>"
			}
			// Block-level boundaries become line breaks.
			if strings.HasPrefix(lower[i:], "<br") || strings.HasPrefix(lower[i:], "<p") ||
				strings.HasPrefix(lower[i:], "<div") || strings.HasPrefix(lower[i:], "<tr") {
				b.WriteByte('\n')
			}
		case s[i] == '>':
			inTag = false
		case !inTag:
			b.WriteByte(s[i])
		}
	}

	return collapseWhitespace(htmlEntities.Replace(b.String()))
}

// collapseWhitespace squeezes runs of blanks and keeps single newlines.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
