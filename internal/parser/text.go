package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dmallory42/semchunk/internal/doctree"
)

// TextParser handles plain text files. There is no heading structure, so
// each paragraph becomes a content block directly under the root.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	root := doctree.NewRoot()
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			root.AddChild(&doctree.Node{
				Kind: doctree.KindContent,
				Text: current.String(),
			})
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return root, nil
}
