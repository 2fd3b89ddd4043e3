package web

import (
	"strings"
	"testing"
)

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}

func TestExtractPage_RemovesScriptStyle(t *testing.T) {
	html := `
<html><head><title> Pricing </title><style>.x {}</style></head>
<body>
    <div id="main">Hello</div>
    <script>alert("hi")</script>
    <style>.y {}</style>
</body></html>`

	title, out, _ := ExtractPage(html, "https://example.com", &DefaultCleanConfig)

	if title != "Pricing" {
		t.Errorf("expected title Pricing, got %q", title)
	}
	if contains(out, "alert") || contains(out, ".y") {
		t.Errorf("script/style content must be removed, output: %s", out)
	}
	if !contains(out, "Hello") {
		t.Errorf("expected to keep normal text")
	}
}

func TestExtractPage_RemovesComments(t *testing.T) {
	html := `
<body>
    <!-- comment -->
    <div>Text</div>
</body>`

	_, out, _ := ExtractPage(html, "", &DefaultCleanConfig)

	if contains(out, "comment") {
		t.Errorf("HTML comments must be removed")
	}
}

func TestExtractPage_StructureAndLinks(t *testing.T) {
	html := `
<body>
    <h2>Plans</h2>
    <ul><li>Starter   $9</li><li>Pro $29</li></ul>
    <a href="/docs">Docs</a>
    <a href="mailto:x@example.com">Mail</a>
</body>`

	_, out, links := ExtractPage(html, "https://example.com/pricing", nil)

	if !contains(out, "## Plans") {
		t.Errorf("headings should be kept as markdown, output: %s", out)
	}
	if !contains(out, "- Starter $9") {
		t.Errorf("list items should be bullets with collapsed spaces, output: %s", out)
	}
	if len(links) != 1 || links[0].Href != "https://example.com/docs" || links[0].Text != "Docs" {
		t.Errorf("expected one absolute http link, got %+v", links)
	}
}

func TestExtractPage_Truncates(t *testing.T) {
	cfg := DefaultCleanConfig
	cfg.MaxOutputSize = 50

	_, out, _ := ExtractPage("<body><p>"+strings.Repeat("a", 500)+"</p></body>", "", &cfg)

	if !strings.HasSuffix(out, "... (page truncated)") {
		t.Errorf("expected truncation marker, got %q", out)
	}
}
