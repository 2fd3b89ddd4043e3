package report

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxMessageLen keeps chunks below Slack's section limits.
const MaxMessageLen = 3500

var (
	headerRe    = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	boldRe      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	linkRe      = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	tableRe     = regexp.MustCompile(`(\|[^\n]+\|\n)(\|[-:| ]+\|\n)((?:\|[^\n]+\|\n?)+)`)
	ruleRe      = regexp.MustCompile(`(?m)^---+$`)
	blankRe     = regexp.MustCompile(`\n{3,}`)
	sectionHead = regexp.MustCompile(`\n\*[^*\n]+\*\n`)
)

var ruleLine = strings.Repeat("━", 40)

// MarkdownToSlack converts GitHub markdown into Slack mrkdwn.
func MarkdownToSlack(text string) string {
	text = headerRe.ReplaceAllString(text, "*$1*")
	text = boldRe.ReplaceAllString(text, "*$1*")
	text = linkRe.ReplaceAllString(text, "<$2|$1>")
	text = tableRe.ReplaceAllStringFunc(text, formatTable)
	text = ruleRe.ReplaceAllString(text, ruleLine)
	text = blankRe.ReplaceAllString(text, "\n\n")
	return text
}

// formatTable keeps plain tables as code blocks and turns competitive
// matrices into bullet lists per feature.
func formatTable(table string) string {
	lines := strings.Split(strings.TrimSpace(table), "\n")
	if len(lines) < 2 {
		return table
	}
	headers := cells(lines[0])
	if len(headers) == 0 {
		return table
	}

	isMatrix := strings.Contains(table, "✅") || strings.Contains(table, "❌") ||
		strings.Contains(table, "Yes") || strings.Contains(table, "Partial")
	if !isMatrix {
		return "```\n" + table + "```"
	}

	replacer := strings.NewReplacer("Yes", "✅", "No", "❌", "Partial", "◐")
	var out []string
	for _, line := range lines[2:] {
		row := cells(line)
		if len(row) == 0 {
			continue
		}
		out = append(out, "*"+row[0]+"*")
		for i, val := range row[1:] {
			if i+1 < len(headers) {
				out = append(out, "  • "+headers[i+1]+": "+replacer.Replace(val))
			}
		}
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}

func cells(line string) []string {
	var out []string
	for _, c := range strings.Split(line, "|") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// SplitMessage splits text into chunks of at most maxLen bytes, preferring
// bold section headers, then paragraphs, then lines.
func SplitMessage(text string, maxLen int) []string {
	if maxLen <= 100 {
		maxLen = MaxMessageLen
	}

	var chunks []string
	flush := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			chunks = append(chunks, s)
		}
	}

	current := ""
	for _, section := range splitKeep(text, sectionHead) {
		if len(current)+len(section) < maxLen {
			current += section
			continue
		}
		flush(current)
		if len(section) <= maxLen {
			current = section
			continue
		}

		current = ""
		for _, para := range strings.Split(section, "\n\n") {
			switch {
			case len(para) > maxLen:
				flush(current)
				current = ""
				chunks = append(chunks, splitLines(para, maxLen)...)
			case len(current)+len(para)+2 < maxLen:
				current += para + "\n\n"
			default:
				flush(current)
				current = para + "\n\n"
			}
		}
	}
	flush(current)
	return chunks
}

// splitKeep splits s around re matches and keeps the matches as pieces.
func splitKeep(s string, re *regexp.Regexp) []string {
	var out []string
	last := 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		out = append(out, s[last:loc[0]], s[loc[0]:loc[1]])
		last = loc[1]
	}
	return append(out, s[last:])
}

func splitLines(text string, maxLen int) []string {
	var out []string
	current := ""
	flush := func() {
		if s := strings.TrimSpace(current); s != "" {
			out = append(out, s)
		}
		current = ""
	}
	for _, line := range strings.Split(text, "\n") {
		switch {
		case len(line) > maxLen:
			flush()
			out = append(out, splitRunes(line, maxLen-100)...)
		case len(current)+len(line)+1 < maxLen:
			current += line + "\n"
		default:
			flush()
			current = line + "\n"
		}
	}
	flush()
	return out
}

// splitRunes cuts s into pieces of at most n bytes on rune boundaries. A
// rune wider than n gets a piece of its own.
func splitRunes(s string, n int) []string {
	var out []string
	for len(s) > n {
		cut := n
		for cut > 0 && !isRuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(s)
		}
		out = append(out, s[:cut])
		s = s[cut:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
