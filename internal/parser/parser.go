package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dmallory42/semchunk/internal/doctree"
)

// Parser converts raw document bytes into a document tree. Any provider
// that can produce the doctree shape can be substituted; the chunk builder
// never sees the source markup.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Node, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// TitleFromFilename derives a document title by stripping the extension.
func TitleFromFilename(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

// headerStack tracks the current heading nesting while a provider walks its
// source format. All providers share the same construction discipline:
// headings push nodes, body text lands in content-block children.
type headerStack struct {
	nodes []*doctree.Node
}

func newHeaderStack(root *doctree.Node) *headerStack {
	return &headerStack{nodes: []*doctree.Node{root}}
}

func (s *headerStack) top() *doctree.Node {
	return s.nodes[len(s.nodes)-1]
}

// pushHeader attaches a new header under the nearest ancestor with a lower
// level and makes it the current section.
func (s *headerStack) pushHeader(title string, level int) {
	for len(s.nodes) > 1 && s.top().Level >= level {
		s.nodes = s.nodes[:len(s.nodes)-1]
	}
	header := s.top().AddChild(&doctree.Node{
		Kind:  doctree.KindHeader,
		Level: level,
		Title: title,
	})
	s.nodes = append(s.nodes, header)
}

// addContent appends body text as a content-block child of the current
// section, inheriting its level.
func (s *headerStack) addContent(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	top := s.top()
	top.AddChild(&doctree.Node{
		Kind:  doctree.KindContent,
		Level: top.Level,
		Text:  text,
	})
}
