package transliteration

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	stressMarksFirst = '\u0300'
	stressMarksLast  = '\u036f'
)

// isStressMark reports whether r is in the Combining Diacritical Marks block.
// Cyrillic stress marks are never precomposed, so after NFC they are always
// separate runes.
func isStressMark(r rune) bool {
	return r >= stressMarksFirst && r <= stressMarksLast
}

func isApostropheVariant(r rune) bool {
	return r == '\'' || r == '\u2019' || r == modifierApostrophe
}

// isWordRune classifies r as part of a run: letters, numbers and underscore,
// stress marks, and for orthographies with an apostrophe letter, the
// apostrophe variants.
func (p *profile) isWordRune(r rune) bool {
	switch {
	case unicode.IsLetter(r), unicode.IsNumber(r), r == '_':
		return true
	case isStressMark(r):
		return true
	case p.apostrophes && isApostropheVariant(r):
		return true
	}
	return false
}

// normalizeApostrophes rewrites U+0027 and U+2019 to U+02BC in place when the
// alphabet has the modifier apostrophe as a letter.
func (p *profile) normalizeApostrophes(run []rune) {
	if !p.has(modifierApostrophe) {
		return
	}
	for i, r := range run {
		if r == '\'' || r == '\u2019' {
			run[i] = modifierApostrophe
		}
	}
}

// transducer romanizes runs for one call. It owns its casers, which are not
// safe for concurrent use.
type transducer struct {
	p     *profile
	title cases.Caser
	lower cases.Caser
	out   strings.Builder
}

func newTransducer(p *profile) *transducer {
	return &transducer{
		p:     p,
		title: cases.Title(language.Und),
		lower: cases.Lower(language.Und),
	}
}

// romanize scans text for runs and rewrites each one, copying everything in
// between unchanged.
func (t *transducer) romanize(text string) string {
	t.out.Reset()
	t.out.Grow(len(text))

	start := -1
	for pos, r := range text {
		if t.p.isWordRune(r) {
			if start < 0 {
				start = pos
			}
			continue
		}
		if start >= 0 {
			t.word(text[start:pos])
			start = -1
		}
		t.out.WriteRune(r)
	}
	if start >= 0 {
		t.word(text[start:])
	}
	return t.out.String()
}

// word transduces a single run into the output buffer.
func (t *transducer) word(text string) {
	run := []rune(text)
	t.p.normalizeApostrophes(run)

	// Resolvers and case transfer read neighbouring letters, so they see the
	// run with stress marks taken out. at maps run indexes into that view.
	view := make([]rune, 0, len(run))
	at := make([]int, len(run))
	for i, r := range run {
		at[i] = len(view)
		if !isStressMark(r) {
			view = append(view, r)
		}
	}
	upper := make([]rune, len(view))
	for i, r := range view {
		upper[i] = unicode.ToUpper(r)
	}

	for i := 0; i < len(run); {
		if isStressMark(run[i]) || !t.p.has(unicode.ToUpper(run[i])) {
			t.out.WriteRune(run[i])
			i++
			continue
		}

		if d := t.p.resolve(upper, at[i]); d != "" {
			t.out.WriteString(t.applyCase(d, view, at[i]))
		}

		i++
		for i < len(run) && isStressMark(run[i]) {
			i++
		}
	}
}

// applyCase transfers the case of letters[i] onto its replacement d. An uppercase
// letter followed by a lowercase one starts a capitalized word, so only the
// first Latin letter of d stays upper.
func (t *transducer) applyCase(d string, letters []rune, i int) string {
	if !unicode.IsUpper(letters[i]) {
		return t.lower.String(d)
	}
	if i+1 < len(letters) && unicode.IsLower(letters[i+1]) && utf8.RuneCountInString(d) > 1 {
		return t.title.String(d)
	}
	return d
}
