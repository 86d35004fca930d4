package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize prepares text for censorship matching: NFKC, case folding,
// Arabic diacritics and letter variants folded, whitespace collapsed.
func Normalize(content string) string {
	folded := cases.Fold().String(norm.NFKC.String(content))

	var b strings.Builder
	b.Grow(len(folded))
	lastWasSpace := true
	for _, r := range folded {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		if isArabicDiacritic(r) {
			continue
		}
		b.WriteRune(foldArabic(r))
		lastWasSpace = false
	}
	return strings.TrimRight(b.String(), " ")
}

func isArabicDiacritic(r rune) bool {
	return (r >= 0x064B && r <= 0x0658) || r == 0x0670
}

func foldArabic(r rune) rune {
	switch r {
	case 'إ', 'أ', 'آ', 'ٱ', 'ٲ', 'ٳ', 'ٵ':
		return 'ا'
	case 'ة':
		return 'ه'
	case 'ی', 'ى':
		return 'ي'
	}
	return r
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokens splits content on every rune that is neither a letter nor a digit.
func Tokens(content string) []string {
	return strings.FieldsFunc(content, func(r rune) bool { return !isWordRune(r) })
}

// ContainsBounded reports whether word occurs in content with no letter or digit directly around it.
func ContainsBounded(content, word string) bool {
	if word == "" {
		return false
	}
	for offset := 0; offset <= len(content)-len(word); {
		i := strings.Index(content[offset:], word)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(word)

		before, _ := utf8.DecodeLastRuneInString(content[:start])
		after, _ := utf8.DecodeRuneInString(content[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(content) || !isWordRune(after)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(content[start:])
		offset = start + size
	}
	return false
}
