package jptext

// Unicode script helpers for the character classes the tokenizer filter
// and the fallback tokenizer care about.

func IsHiragana(r rune) bool {
	return r >= 0x3040 && r <= 0x309F
}

func IsKatakana(r rune) bool {
	return r >= 0x30A0 && r <= 0x30FF
}

func IsKanji(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FAF
}

func IsJapanese(r rune) bool {
	return IsHiragana(r) || IsKatakana(r) || IsKanji(r)
}

// ContainsJapanese reports whether any rune in s is hiragana, katakana
// or kanji.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		if IsJapanese(r) {
			return true
		}
	}
	return false
}

func allHiragana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsHiragana(r) {
			return false
		}
	}
	return true
}

func allJapanese(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsJapanese(r) {
			return false
		}
	}
	return true
}
