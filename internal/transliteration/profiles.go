package transliteration

import "github.com/samber/lo"

// modifierApostrophe is the internal representative for every apostrophe-like
// input. It is a letter (Lm), so it stays inside words.
const modifierApostrophe = '\u02bc'

// profile is the static data of one orthography. All fields are read-only
// after package initialization.
type profile struct {
	alphabet   map[rune]struct{}
	mapping    map[rune]string
	consonants map[rune]struct{}
	resolve    resolver
	// apostrophes reports whether U+0027 and U+2019 are part of words.
	apostrophes bool
}

func (p *profile) has(r rune) bool {
	_, ok := p.alphabet[r]
	return ok
}

func (p *profile) isConsonant(r rune) bool {
	_, ok := p.consonants[r]
	return ok
}

func runeSet(letters string) map[rune]struct{} {
	return lo.SliceToMap([]rune(letters), func(r rune) (rune, struct{}) {
		return r, struct{}{}
	})
}

// SFS 4900 tables.
var (
	russian = &profile{
		alphabet:   runeSet("АЕИОЁУЫЭЮЯБВГДЖЗЙКЛМНПРСТФХЦЧШЩЬЪ"),
		consonants: runeSet("БВГДЖЗЙКЛМНПРСТФХЦЧШЩ"),
		mapping: map[rune]string{
			'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Ж': "Ž",
			'З': "Z", 'К': "K", 'Л': "L", 'М': "M", 'Н': "N", 'О': "O",
			'П': "P", 'Р': "R", 'С': "S", 'Т': "T", 'У': "U", 'Ф': "F",
			'Х': "H", 'Ц': "TS", 'Ч': "TŠ", 'Ш': "Š", 'Щ': "ŠTŠ", 'Ъ': "",
			'Ы': "Y", 'Ь': "", 'Э': "E", 'Ю': "JU", 'Я': "JA",
		},
	}

	ukrainian = &profile{
		alphabet: runeSet("АБВГҐДЕЄЖЗИІЇЙКЛМНОПРСТУФХЦЧШЩЮЯЬʼЪ"),
		mapping: map[rune]string{
			'А': "A", 'Б': "B", 'В': "V", 'Г': "H", 'Ґ': "G", 'Д': "D",
			'Е': "E", 'Є': "JE", 'Ж': "Ž", 'З': "Z", 'И': "Y", 'І': "I",
			'Ї': "JI", 'К': "K", 'Л': "L", 'М': "M", 'Н': "N", 'О': "O",
			'П': "P", 'Р': "R", 'С': "S", 'Т': "T", 'У': "U", 'Ф': "F",
			'Х': "Hʼ", 'Ц': "TS", 'Ч': "TŠ", 'Ш': "Š", 'Щ': "ŠTŠ",
			'Ю': "JU", 'Я': "JA", 'Ь': "", 'ʼ': "", 'Ъ': "",
		},
		apostrophes: true,
	}

	belarusian = &profile{
		alphabet:   runeSet("АБВГДЕЁЖЗІЙКЛМНОПРСТУЎФХЦЧШʼЫЬЭЮЯҐИЪѢ"),
		consonants: runeSet("БВГДЖКЛМНПРСТЎФХЦЧШЬЭҐИЪѢ"),
		mapping: map[rune]string{
			'А': "A", 'Б': "B", 'В': "V", 'Г': "H", 'Д': "D", 'Ё': "JO",
			'Ж': "Ž", 'З': "Z", 'І': "I", 'К': "K", 'Л': "L", 'М': "M",
			'Н': "N", 'О': "O", 'П': "P", 'Р': "R", 'С': "S", 'Т': "T",
			'У': "U", 'Ў': "U", 'Ф': "F", 'Х': "Hʼ", 'Ц': "TS",
			'Ч': "TŠ", 'Ш': "Š", 'ʼ': "", 'Ы': "Y", 'Ь': "", 'Э': "E",
			'Ю': "JU", 'Я': "JA", 'Ґ': "G", 'И': "I", 'Ъ': "",
		},
		apostrophes: true,
	}

	bulgarian = &profile{
		alphabet: runeSet("АБВГДЕЖЗИЙКЛМНОПРСТУФХЦЧШЩЪЬЮЯІЫѢѪ"),
		mapping: map[rune]string{
			'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Е': "E",
			'Ж': "Ž", 'З': "Z", 'И': "I", 'К': "K", 'Л': "L", 'М': "M",
			'Н': "N", 'О': "O", 'П': "P", 'Р': "R", 'С': "S", 'Т': "T",
			'У': "U", 'Ф': "F", 'Х': "H", 'Ц': "TS", 'Ч': "TŠ", 'Ш': "Š",
			'Щ': "ŠT", 'Ь': "J", 'Ю': "JU", 'Я': "JA", 'І': "I", 'Ы': "Y",
			'Ѣ': "E", 'Ѫ': "Ă",
		},
	}

	macedonian = &profile{
		alphabet: runeSet("АБВГДЃЕЖЗЅИЈКЛЉМНЊОПРСТЌУФХЦЧЏШ"),
		mapping: map[rune]string{
			'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Ѓ': "Gʼ",
			'Е': "E", 'Ж': "Ž", 'З': "Z", 'Ѕ': "DZ", 'И': "I", 'Ј': "J",
			'К': "K", 'Л': "L", 'Љ': "LJ", 'М': "M", 'Н': "N", 'Њ': "NJ",
			'О': "O", 'П': "P", 'Р': "R", 'С': "S", 'Т': "T", 'Ќ': "Kʼ",
			'У': "U", 'Ф': "F", 'Х': "H", 'Ц': "C", 'Ч': "Č", 'Џ': "DŽ",
			'Ш': "Š",
		},
	}
)

func init() {
	russian.resolve = resolveRussian
	ukrainian.resolve = resolveUkrainian
	belarusian.resolve = resolveBelarusian
	bulgarian.resolve = resolveBulgarian
	macedonian.resolve = resolveMacedonian
}
