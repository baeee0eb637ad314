package samples

import (
	"testing"

	"github.com/jusunglee/kyrlat/internal/transliteration"
	"github.com/stretchr/testify/assert"
)

func TestSamplesMatchEngine(t *testing.T) {
	for _, s := range All {
		assert.Equal(t, s.Want, transliteration.Romanize(s.Language, s.Input), "%s %q", s.Language, s.Input)
	}
}

func TestByLanguageCoversEveryLanguage(t *testing.T) {
	groups := ByLanguage()
	for _, lang := range transliteration.Languages() {
		assert.NotEmpty(t, groups[lang], lang.String())
	}
}
