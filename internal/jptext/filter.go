package jptext

import (
	"regexp"
	"strings"
)

// The dictionary server's segmenter leaks stray particles, bare
// conjugation endings and decorative symbols. FilterTokens is the noise
// layer tuned against those failure modes.

const symbolClass = `。、！？「」『』（）・…ー～〜♡♥★☆◇◆■□▪▫●○◎▲△▼▽◀▶←→↑↓♪♫※\s\-` +
	`\x{2000}-\x{206F}\x{2E00}-\x{2E7F}\x{3000}-\x{303F}\x{FF00}-\x{FFEF}`

var symbolOnlyPattern = regexp.MustCompile(`^[` + symbolClass + `]+$`)

var symbolRunePattern = regexp.MustCompile(`[` + symbolClass + `]`)

var conjugationEndingPattern = regexp.MustCompile(`^[っつくぐすむぶぬたるれ]{1,2}$`)

// bareParticles are single characters that are almost always tokenizer
// debris rather than words.
const bareParticles = "はをにがでとやかのもてだよねなれしたっつくぐすむぶぬ"

// meaningfulSingles are single hiragana worth keeping, like the
// adjective ending い.
var meaningfulSingles = map[string]struct{}{
	"い": {}, "う": {}, "き": {}, "し": {}, "ふ": {}, "ゆ": {},
}

// allowedShortWords are complete one- or two-character hiragana words
// (demonstratives, copulas, common function words) exempt from the
// short-fragment rule.
var allowedShortWords = map[string]struct{}{
	"です": {}, "ます": {}, "この": {}, "その": {}, "あの": {}, "どの": {},
	"これ": {}, "それ": {}, "あれ": {}, "どれ": {}, "から": {}, "まで": {},
	"より": {}, "など": {}, "でも": {}, "もう": {}, "まだ": {}, "もの": {},
	"こと": {}, "とき": {}, "ため": {}, "ごと": {}, "けど": {},
}

// FilterTokens drops noise tokens, preserving order. It never adds or
// rewrites tokens, so it is idempotent.
func FilterTokens(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if keepToken(tok) {
			kept = append(kept, tok)
		}
	}
	return kept
}

func keepToken(tok string) bool {
	if strings.TrimSpace(tok) == "" {
		return false
	}
	if symbolOnlyPattern.MatchString(tok) {
		return false
	}

	runes := []rune(tok)
	if symbols := len(symbolRunePattern.FindAllString(tok, -1)); symbols*10 >= len(runes)*7 {
		return false
	}

	if len(runes) == 1 {
		_, meaningful := meaningfulSingles[tok]
		if strings.ContainsRune(bareParticles, runes[0]) && !meaningful {
			return false
		}
		if IsKatakana(runes[0]) {
			return false
		}
		if IsHiragana(runes[0]) && !meaningful {
			return false
		}
	}

	if len(runes) == 2 && allHiragana(tok) {
		if _, ok := allowedShortWords[tok]; !ok {
			return false
		}
	}

	if conjugationEndingPattern.MatchString(tok) {
		return false
	}

	return ContainsJapanese(tok) || !allJapanese(tok)
}
