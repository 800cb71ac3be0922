package chunk

// Chunk is a bounded slice of the input text. Concatenating all chunk
// texts in index order reproduces the input exactly.
type Chunk struct {
	Index int
	Text  string
}

// boundaryWindow is how far back from the size limit we search for a
// natural break before giving up and cutting mid-token.
const boundaryWindow = 200

var sentenceEnders = []rune{'。', '！', '？', '…', '』', '」'}
var secondaryBreaks = []rune{'、', '・', '）', '｝'}
var whitespaceBreaks = []rune{'\n', ' ', '　'}

// Split divides text into chunks of at most maxSize runes, preferring to
// break after sentence-ending punctuation, then secondary punctuation,
// then whitespace. A chunk is cut exactly at maxSize only when no
// boundary exists in the trailing search window.
func Split(text string, maxSize int) []Chunk {
	if text == "" || maxSize <= 0 {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= maxSize {
		return []Chunk{{Index: 0, Text: text}}
	}

	chunks := []Chunk{}
	start := 0
	for start < len(runes) {
		end := start + maxSize
		if end >= len(runes) {
			chunks = append(chunks, Chunk{Index: len(chunks), Text: string(runes[start:])})
			break
		}

		searchStart := end - boundaryWindow
		if searchStart < start {
			searchStart = start
		}
		if cut, ok := lastBreak(runes, searchStart, end); ok {
			end = cut
		}

		chunks = append(chunks, Chunk{Index: len(chunks), Text: string(runes[start:end])})
		start = end
	}
	return chunks
}

// lastBreak finds the rightmost boundary rune in runes[from:to), honoring
// the break-class priority order. The returned cut position is one past
// the boundary rune.
func lastBreak(runes []rune, from, to int) (int, bool) {
	for _, class := range [][]rune{sentenceEnders, secondaryBreaks, whitespaceBreaks} {
		for i := to - 1; i >= from; i-- {
			if runeIn(runes[i], class) {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func runeIn(r rune, set []rune) bool {
	for _, s := range set {
		if r == s {
			return true
		}
	}
	return false
}
