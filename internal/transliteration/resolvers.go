package transliteration

// resolver returns the Latin replacement for run[i]. The run is already
// upper-cased and has no stress marks; resolvers look at most one letter back and test whether i is
// the first or last position of the run.
type resolver func(run []rune, i int) string

func previous(run []rune, i int) (rune, bool) {
	if i == 0 {
		return 0, false
	}
	return run[i-1], true
}

func isLast(run []rune, i int) bool {
	return i == len(run)-1
}

// afterConsonant is the shared Е rule: JE unless a consonant precedes.
func afterConsonant(p *profile, run []rune, i int) string {
	if prev, ok := previous(run, i); ok && p.isConsonant(prev) {
		return "E"
	}
	return "JE"
}

func resolveRussian(run []rune, i int) string {
	prev, hasPrev := previous(run, i)
	switch run[i] {
	case 'Е':
		return afterConsonant(russian, run, i)
	case 'Ё':
		// Ж, Ч, Ш and Щ are always hard, so Ё loses its J.
		switch prev {
		case 'Ж', 'Ч', 'Ш', 'Щ':
			return "O"
		}
		return "JO"
	case 'И':
		if prev == 'Ь' {
			return "JI"
		}
		return "I"
	case 'Й':
		if !hasPrev {
			return "J"
		}
		if prev == 'И' {
			if isLast(run, i) {
				return ""
			}
			return "J"
		}
		return "I"
	}
	return russian.mapping[run[i]]
}

func resolveUkrainian(run []rune, i int) string {
	if run[i] == 'Й' {
		prev, hasPrev := previous(run, i)
		if !hasPrev {
			return "J"
		}
		if prev == 'І' {
			if isLast(run, i) {
				return ""
			}
			return "J"
		}
		return "I"
	}
	return ukrainian.mapping[run[i]]
}

func resolveBelarusian(run []rune, i int) string {
	switch run[i] {
	case 'Е', 'Ѣ':
		return afterConsonant(belarusian, run, i)
	case 'Й':
		prev, hasPrev := previous(run, i)
		if !hasPrev {
			return "J"
		}
		if isLast(run, i) && prev == 'І' {
			return ""
		}
		return "I"
	}
	return belarusian.mapping[run[i]]
}

func resolveBulgarian(run []rune, i int) string {
	switch run[i] {
	case 'Й':
		if prev, ok := previous(run, i); !ok || prev == 'И' {
			return "J"
		}
		return "I"
	case 'Ъ':
		if isLast(run, i) {
			return ""
		}
		return "Ă"
	}
	return bulgarian.mapping[run[i]]
}

func resolveMacedonian(run []rune, i int) string {
	return macedonian.mapping[run[i]]
}
