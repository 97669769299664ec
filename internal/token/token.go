package token

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is a good approximation across current model providers.
const DefaultEncoding = "cl100k_base"

// Counter measures text length in tokens. Implementations must be pure and
// total: same input, same non-negative answer, no failure modes.
type Counter interface {
	Count(text string) int
}

// Tiktoken counts tokens with a real BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding (DefaultEncoding if empty). Loading
// can fail when the BPE data is unavailable; callers are expected to fall
// back to the Estimator in that case.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Estimator gives a rough token count from the word count (~0.75 words per
// token for English text). Exact tokenization is not required for chunking,
// so this is an acceptable offline fallback.
type Estimator struct{}

func (Estimator) Count(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
