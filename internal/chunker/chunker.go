package chunker

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dmallory42/semchunk/internal/doctree"
)

// ErrInvalidMaxTokens is returned when the token budget is not positive.
var ErrInvalidMaxTokens = errors.New("max_tokens must be a positive integer")

// TokenCounter measures text length in tokens. Counts are not assumed to be
// additive across concatenation, so the builder recounts after every merge.
type TokenCounter interface {
	Count(text string) int
}

// SentenceSplitter decomposes text into ordered sentence pieces whose
// concatenation reproduces the input.
type SentenceSplitter interface {
	Split(text string) []string
}

// mergeSeparator joins adjacent pieces combined into one chunk.
const mergeSeparator = "\n"

// Builder turns a document tree into a flat, ordered sequence of chunks,
// each at most maxTokens long except for single indivisible sentences.
// A Builder is stateless across calls and safe to reuse.
type Builder struct {
	counter  TokenCounter
	splitter SentenceSplitter
	log      *slog.Logger
}

// NewBuilder wires the builder to its collaborators. The logger may be nil.
func NewBuilder(counter TokenCounter, splitter SentenceSplitter, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{
		counter:  counter,
		splitter: splitter,
		log:      log,
	}
}

// Build produces the chunk sequence for the tree rooted at root.
//
// It fails fast on a non-positive budget or a malformed tree and produces
// no partial output. Chunk order follows document order; the concatenated
// chunk texts (minus merge separators) reproduce the document's text.
func (b *Builder) Build(root *doctree.Node, maxTokens int) ([]doctree.Chunk, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxTokens, maxTokens)
	}
	if err := doctree.Validate(root); err != nil {
		return nil, err
	}

	chunks := b.walk(root, maxTokens)
	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks, nil
}

// walk processes a node post-order: all children left to right, then the
// node's own directly-owned text, then one greedy merge pass over the
// combined piece sequence.
func (b *Builder) walk(node *doctree.Node, maxTokens int) []doctree.Chunk {
	var pieces []doctree.Chunk
	for _, child := range node.Children {
		pieces = append(pieces, b.walk(child, maxTokens)...)
	}

	// Header titles are never chunk bodies; only Text counts.
	if text := strings.TrimSpace(node.Text); text != "" {
		path := node.HeaderPath()
		length := b.counter.Count(text)
		if length > maxTokens {
			pieces = append(pieces, b.splitOversized(text, path, maxTokens)...)
		} else {
			pieces = append(pieces, doctree.Chunk{
				Text:        text,
				TokenLength: length,
				HeaderPath:  path,
			})
		}
	}

	return b.merge(pieces, maxTokens)
}

// merge greedily folds adjacent pieces left to right. A piece joins the
// accumulator when the recounted merged text stays within budget; otherwise
// the accumulator is flushed and the piece starts a new one. Content is
// never reordered to pack tighter — document order wins over packing.
func (b *Builder) merge(pieces []doctree.Chunk, maxTokens int) []doctree.Chunk {
	if len(pieces) < 2 {
		return pieces
	}

	out := make([]doctree.Chunk, 0, len(pieces))
	acc := pieces[0]
	for _, piece := range pieces[1:] {
		combined := acc.Text + mergeSeparator + piece.Text
		length := b.counter.Count(combined)
		if length <= maxTokens {
			acc = doctree.Chunk{
				Text:        combined,
				TokenLength: length,
				HeaderPath:  commonPrefix(acc.HeaderPath, piece.HeaderPath),
			}
			continue
		}
		out = append(out, acc)
		acc = piece
	}
	return append(out, acc)
}

// splitOversized decomposes a section that exceeds the budget on its own
// into sentences, then packs the sentences with the same greedy merge.
// A single sentence over budget is emitted as-is: the budget is a soft
// target for indivisible units, never grounds for truncation.
func (b *Builder) splitOversized(text string, path []string, maxTokens int) []doctree.Chunk {
	sentences := b.splitter.Split(text)
	pieces := make([]doctree.Chunk, 0, len(sentences))
	for _, sent := range sentences {
		length := b.counter.Count(sent)
		piece := doctree.Chunk{
			Text:        sent,
			TokenLength: length,
			HeaderPath:  path,
		}
		if length > maxTokens {
			piece.Overflow = true
			b.log.Warn("sentence exceeds token budget, emitting oversized chunk",
				"tokens", length,
				"max_tokens", maxTokens,
				"header_path", strings.Join(path, " > "),
			)
		}
		pieces = append(pieces, piece)
	}
	return b.merge(pieces, maxTokens)
}

// commonPrefix returns the shared leading header path of two merged pieces.
// Merging across a header boundary keeps only the headers both sides share.
func commonPrefix(a, b []string) []string {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	if n == 0 {
		return nil
	}
	return a[:n:n]
}
