// Package samples holds known-good romanizations used to seed history stores
// and to smoke-test a running server.
package samples

import (
	"github.com/jusunglee/kyrlat/internal/transliteration"
	"github.com/samber/lo"
)

type Sample struct {
	Language transliteration.Language
	Input    string
	Want     string
}

var All = []Sample{
	{transliteration.Russian, "Горбачёв", "Gorbatšov"},
	{transliteration.Russian, "Йошкар-Ола", "Joškar-Ola"},
	{transliteration.Russian, "Щёлково", "Štšolkovo"},
	{transliteration.Russian, "Козьмодемьянск", "Kozmodemjansk"},
	{transliteration.Russian, "Валдайский район", "Valdaiski raion"},
	{transliteration.Russian, "Дми́трий Нарки́сович Ма́мин-Сибиря́к", "Dmitri Narkisovitš Mamin-Sibirjak"},

	{transliteration.Ukrainian, "Запоріжжя", "Zaporižžja"},
	{transliteration.Ukrainian, "Хмельницький", "Hʼmelnytskyi"},
	{transliteration.Ukrainian, "Їжакевич", "Jižakevytš"},
	{transliteration.Ukrainian, "Купʼянськ", "Kupjansk"},
	{transliteration.Ukrainian, "Миха́йло Пана́сович Сте́льмах", "Myhʼailo Panasovytš Stelmahʼ"},

	{transliteration.Belarusian, "Магілёў", "Mahiljou"},
	{transliteration.Belarusian, "Шаркаўшчына", "Šarkauštšyna"},
	{transliteration.Belarusian, "Ельск, Лоеў", "Jelsk, Lojeu"},
	{transliteration.Belarusian, "Вінцэ́нт-Яку́б Ду́нін-Марцінке́віч", "Vintsent-Jakub Dunin-Martsinkevitš"},

	{transliteration.Bulgarian, "Тръстеник", "Trăstenik"},
	{transliteration.Bulgarian, "Стамболийски", "Stambolijski"},
	{transliteration.Bulgarian, "Гълъбово", "Gălăbovo"},
	{transliteration.Bulgarian, "Свищов", "Svištov"},

	{transliteration.Macedonian, "Ѓорѓи", "Gʼorgʼi"},
	{transliteration.Macedonian, "Ѕвезда", "Dzvezda"},
	{transliteration.Macedonian, "Гевгелија", "Gevgelija"},
	{transliteration.Macedonian, "Скопје", "Skopje"},
}

// ByLanguage groups All by language, keeping their order.
func ByLanguage() map[transliteration.Language][]Sample {
	return lo.GroupBy(All, func(s Sample) transliteration.Language {
		return s.Language
	})
}
