package notifier

import (
	"strings"
	"time"

	"moonwatch/internal/pkg/text"
)

const maxStructuredMessageLen = 3800

// MessageSection is one paragraph of a notification. Code sections are sent
// inside a fenced block so tables keep their alignment.
type MessageSection struct {
	Title string
	Lines []string
	Code  bool
}

// StructuredMessage is the common shape of every push notification.
type StructuredMessage struct {
	Icon      string
	Title     string
	Sections  []MessageSection
	Footer    string
	Timestamp time.Time
}

// RenderMarkdown builds the Markdown body, truncated to the Telegram limit.
func (m StructuredMessage) RenderMarkdown() string {
	var b strings.Builder
	header := strings.TrimSpace(m.Icon + " " + m.Title)
	if header != "" {
		b.WriteString(header + "\n\n")
	}
	for _, sec := range m.Sections {
		b.WriteString(renderSection(sec))
	}
	if footer := strings.TrimSpace(m.Footer); footer != "" {
		b.WriteString(sanitize(footer))
		b.WriteString("\n")
	}
	if !m.Timestamp.IsZero() {
		b.WriteString("Time: " + m.Timestamp.Format("2006-01-02 15:04:05 MST"))
	}
	return text.Truncate(strings.TrimSpace(b.String()), maxStructuredMessageLen)
}

func renderSection(sec MessageSection) string {
	lines := sec.Lines
	if !sec.Code {
		lines = sanitizeLines(lines)
	}
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	if title := strings.TrimSpace(sec.Title); title != "" {
		b.WriteString(sanitize(title))
		b.WriteString("\n")
	}
	if sec.Code {
		b.WriteString("```\n")
	}
	for _, line := range lines {
		b.WriteString(sanitize(strings.TrimRight(line, " ")))
		b.WriteString("\n")
	}
	if sec.Code {
		b.WriteString("```\n")
	}
	b.WriteString("\n")
	return b.String()
}

func sanitizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func sanitize(s string) string {
	return strings.ReplaceAll(s, "```", "'''")
}
