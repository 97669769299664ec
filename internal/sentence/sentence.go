package sentence

// Splitter segments text into sentences on terminal punctuation.
//
// A boundary is a run of '.', '!' or '?' followed by whitespace or end of
// input. The whitespace after a boundary stays attached to the preceding
// piece, so concatenating the pieces reproduces the input byte-for-byte.
// Abbreviations ("e.g. ", "Dr. ") are split like any other terminal — a
// known limitation of the heuristic.
type Splitter struct{}

// Split returns the ordered sentence pieces of text. It is deterministic
// and total: text with no boundary yields a single-element result, empty
// text yields nothing.
func (Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}

	var pieces []string
	start := 0
	i := 0
	for i < len(text) {
		if !isTerminal(text[i]) {
			i++
			continue
		}
		// Consume the full punctuation run ("...", "?!").
		j := i + 1
		for j < len(text) && isTerminal(text[j]) {
			j++
		}
		if j >= len(text) {
			i = j
			break
		}
		if !isSpace(text[j]) {
			// Mid-word dot (version numbers, URLs): not a boundary.
			i = j
			continue
		}
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		pieces = append(pieces, text[start:j])
		start = j
		i = j
	}
	if start < len(text) {
		pieces = append(pieces, text[start:])
	}
	return pieces
}

func isTerminal(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
