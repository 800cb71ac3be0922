package jptext

import (
	"strings"
	"unicode"
)

// commonAdjectives are multi-character i-adjectives the fallback scanner
// consumes whole so they are not shattered into single glyphs. The
// fallback path is deliberately crude; this list only protects the most
// frequent casualties.
var commonAdjectives = []string{
	"熱い", "冷たい", "暖かい", "涼しい", "温かい",
	"固い", "柔らかい", "硬い", "軟らかい",
	"重い", "軽い", "厚い", "薄い", "太い", "細い",
	"高い", "低い", "長い", "短い", "広い", "狭い",
	"新しい", "古い", "若い", "美しい", "可愛い",
	"大きい", "小さい", "多い", "少ない",
	"早い", "遅い", "速い", "安い",
	"良い", "悪い", "正しい", "危ない",
	"楽しい", "悲しい", "嬉しい", "苦しい", "痛い",
	"難しい", "易しい", "忙しい",
	"面白い", "詰まらない", "珍しい",
	"眠い",
}

// FallbackTokenize is the degraded local segmenter used when the
// dictionary server is unreachable. It emits whole adjectives from the
// allowlist and otherwise one token per non-whitespace character.
func FallbackTokenize(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	tokens := []string{}
	i := 0
	for i < len(runes) {
		if adj, n := matchAdjective(runes[i:]); n > 0 {
			tokens = append(tokens, adj)
			i += n
			continue
		}
		if !unicode.IsSpace(runes[i]) {
			tokens = append(tokens, string(runes[i]))
		}
		i++
	}
	return tokens
}

func matchAdjective(rest []rune) (string, int) {
	for _, adj := range commonAdjectives {
		ar := []rune(adj)
		if len(ar) > len(rest) {
			continue
		}
		if strings.HasPrefix(string(rest[:len(ar)]), adj) {
			return adj, len(ar)
		}
	}
	return "", 0
}
