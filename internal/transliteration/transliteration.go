// Package transliteration romanizes Russian, Ukrainian, Belarusian, Bulgarian
// and Macedonian Cyrillic text according to SFS 4900.
//
// Input is normalized to NFC, maximal word runs are romanized letter by letter
// and everything outside the runs is copied unchanged. All functions are pure
// and safe for concurrent use.
package transliteration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"
)

// ErrUnknownLanguage is returned by ParseLanguage for unsupported languages.
var ErrUnknownLanguage = errors.New("unknown language")

// Language selects an orthography.
type Language int

const (
	Russian Language = iota
	Ukrainian
	Belarusian
	Bulgarian
	Macedonian
)

var languages = []struct {
	code    string
	name    string
	profile *profile
}{
	Russian:    {"ru", "Russian", russian},
	Ukrainian:  {"uk", "Ukrainian", ukrainian},
	Belarusian: {"be", "Belarusian", belarusian},
	Bulgarian:  {"bg", "Bulgarian", bulgarian},
	Macedonian: {"mk", "Macedonian", macedonian},
}

// Languages returns every supported language.
func Languages() []Language {
	return lo.Times(len(languages), func(i int) Language { return Language(i) })
}

// Code returns the ISO 639-1 code of l.
func (l Language) Code() string {
	if !l.valid() {
		return ""
	}
	return languages[l].code
}

func (l Language) String() string {
	if !l.valid() {
		return fmt.Sprintf("Language(%d)", int(l))
	}
	return languages[l].name
}

func (l Language) valid() bool {
	return l >= 0 && int(l) < len(languages)
}

// ParseLanguage accepts an ISO 639-1 code or an English language name.
func ParseLanguage(s string) (Language, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, lang := range languages {
		if s == lang.code || s == strings.ToLower(lang.name) {
			return Language(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}

type options struct {
	ascii bool
}

// Option adjusts RomanizeWith.
type Option func(*options)

// WithASCII folds the romanized text to 7-bit ASCII, dropping carons and
// breves (Š→S, Ă→A) and rendering the modifier apostrophe as '.
func WithASCII() Option {
	return func(o *options) { o.ascii = true }
}

// Romanize romanizes text using the orthography of lang. Unsupported language
// values return the NFC form of text.
func Romanize(lang Language, text string) string {
	text = norm.NFC.String(text)
	if !lang.valid() {
		return text
	}
	return newTransducer(languages[lang].profile).romanize(text)
}

// RomanizeWith is Romanize with options.
func RomanizeWith(lang Language, text string, opts ...Option) string {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	out := Romanize(lang, text)
	if o.ascii {
		out = unidecode.Unidecode(out)
	}
	return out
}

// RomanizeRU romanizes Russian text.
func RomanizeRU(text string) string { return Romanize(Russian, text) }

// RomanizeUK romanizes Ukrainian text.
func RomanizeUK(text string) string { return Romanize(Ukrainian, text) }

// RomanizeBE romanizes Belarusian text.
func RomanizeBE(text string) string { return Romanize(Belarusian, text) }

// RomanizeBG romanizes Bulgarian text.
func RomanizeBG(text string) string { return Romanize(Bulgarian, text) }

// RomanizeMK romanizes Macedonian text.
func RomanizeMK(text string) string { return Romanize(Macedonian, text) }
