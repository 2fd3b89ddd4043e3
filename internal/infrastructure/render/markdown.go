// Package render formats markdown reports for the terminal.
package render

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
)

const DefaultWidth = 100

// Markdown renders md with a terminal style. style is a glamour style name
// ("dark", "light", "notty"); empty picks one from the terminal.
func Markdown(md, style string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func File(path, style string, width int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Markdown(string(data), style, width)
}
