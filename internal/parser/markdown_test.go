package parser

import (
	"strings"
	"testing"

	"github.com/dmallory42/semchunk/internal/doctree"
)

// contentText concatenates the direct content-block children of a node.
func contentText(n *doctree.Node) string {
	var parts []string
	for _, c := range n.Children {
		if c.Kind == doctree.KindContent {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// headerChildren returns the direct header children of a node.
func headerChildren(n *doctree.Node) []*doctree.Node {
	var out []*doctree.Node
	for _, c := range n.Children {
		if c.Kind == doctree.KindHeader {
			out = append(out, c)
		}
	}
	return out
}

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

## Section B

Section B content.
`
	p := &MarkdownParser{}
	root, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := doctree.Validate(root); err != nil {
		t.Fatalf("parser produced malformed tree: %v", err)
	}

	// Top-level: one h1 ("Title")
	tops := headerChildren(root)
	if len(tops) != 1 {
		t.Fatalf("expected 1 top-level header (h1), got %d", len(tops))
	}

	h1 := tops[0]
	if h1.Title != "Title" {
		t.Errorf("expected h1 title %q, got %q", "Title", h1.Title)
	}
	if h1.Level != 1 {
		t.Errorf("expected h1 level 1, got %d", h1.Level)
	}
	if !strings.Contains(contentText(h1), "Intro text.") {
		t.Errorf("expected h1 content to contain %q, got %q", "Intro text.", contentText(h1))
	}

	// h1 has two h2 children: "Section A" and "Section B"
	h2s := headerChildren(h1)
	if len(h2s) != 2 {
		t.Fatalf("expected 2 h2 children, got %d", len(h2s))
	}

	secA := h2s[0]
	if secA.Title != "Section A" {
		t.Errorf("expected %q, got %q", "Section A", secA.Title)
	}
	if !strings.Contains(contentText(secA), "Section A content.") {
		t.Errorf("expected section A content, got %q", contentText(secA))
	}

	subs := headerChildren(secA)
	if len(subs) != 1 {
		t.Fatalf("expected 1 h3 child under Section A, got %d", len(subs))
	}
	if subs[0].Title != "Subsection A1" {
		t.Errorf("expected %q, got %q", "Subsection A1", subs[0].Title)
	}
	if subs[0].Level != 3 {
		t.Errorf("expected level 3, got %d", subs[0].Level)
	}

	if h2s[1].Title != "Section B" {
		t.Errorf("expected %q, got %q", "Section B", h2s[1].Title)
	}
}

func TestMarkdownParser_ContentPrecedesSubsections(t *testing.T) {
	// Section body text must come before nested headers in child order so
	// chunk output follows document order.
	input := "# A\n\nbody first\n\n## A.1\n\nnested body\n"
	p := &MarkdownParser{}
	root, err := p.Parse(strings.NewReader(input), "order.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h1 := headerChildren(root)[0]
	if len(h1.Children) != 2 {
		t.Fatalf("expected 2 children under h1, got %d", len(h1.Children))
	}
	if h1.Children[0].Kind != doctree.KindContent {
		t.Errorf("expected first child to be content, got %s", h1.Children[0].Kind)
	}
	if h1.Children[1].Kind != doctree.KindHeader {
		t.Errorf("expected second child to be header, got %s", h1.Children[1].Kind)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	p := &MarkdownParser{}
	root, err := p.Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No headings: all text collects into content under the root.
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child for headingless markdown, got %d", len(root.Children))
	}
	text := root.Children[0].Text
	if !strings.Contains(text, "Just some plain text.") {
		t.Errorf("expected text to contain first paragraph, got %q", text)
	}
	if !strings.Contains(text, "Another paragraph here.") {
		t.Errorf("expected text to contain second paragraph, got %q", text)
	}
	if root.Children[0].Level != 0 {
		t.Errorf("expected preamble content at level 0, got %d", root.Children[0].Level)
	}
}

func TestMarkdownParser_MixedContentWithCodeBlocks(t *testing.T) {
	input := "# API Reference\n\nSome intro.\n\n## Endpoints\n\nList of endpoints:\n\n```\nGET /api/users\nPOST /api/users\n```\n\nMore text after code.\n"

	p := &MarkdownParser{}
	root, err := p.Parse(strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tops := headerChildren(root)
	if len(tops) != 1 {
		t.Fatalf("expected 1 top-level header, got %d", len(tops))
	}
	endpoints := headerChildren(tops[0])
	if len(endpoints) != 1 || endpoints[0].Title != "Endpoints" {
		t.Fatalf("expected an Endpoints section, got %v", endpoints)
	}

	body := contentText(endpoints[0])
	if !strings.Contains(body, "GET /api/users") {
		t.Errorf("expected code block content in text, got %q", body)
	}
	if !strings.Contains(body, "More text after code.") {
		t.Errorf("expected post-code text, got %q", body)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	root, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 0 {
		t.Errorf("expected 0 children for empty input, got %d", len(root.Children))
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"dir/report.pdf", "report"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := TitleFromFilename(tt.filename); got != tt.want {
			t.Errorf("filename=%q: expected %q, got %q", tt.filename, tt.want, got)
		}
	}
}
