package service

import (
	"regexp"
	"strings"

	"pricematch-service/internal/match/model"
)

// Конечные формы иврита → базовые (визуальные двойники одного звука).
// Сети пишут по-разному, после свёртки edit distance не штрафует за них.
var finals = map[rune]rune{
	'ך': 'כ', 'ם': 'מ', 'ן': 'נ', 'ף': 'פ', 'ץ': 'צ',
}

// 0,5 → 0.5 (десятичная запятая до чистки пунктуации)
var decComma = regexp.MustCompile(`(\d),(\d)`)

// Промо-вставки в скобках: "(מבצע!)", "(חדש)". Скобки с цифрами не трогаем —
// там может сидеть фасовка.
var parenRun = regexp.MustCompile(`\([^()]*\)`)
var hasDigit = regexp.MustCompile(`\d`)

// Разрешаем буквы/цифры/пробелы + точку и процент. Запятые к этому моменту
// уже либо десятичные точки, либо мусор.
var punct = regexp.MustCompile(`[^\p{L}\p{N}\s.%]+`)

// normalizer — скомпилированный конвейер нормализации имён.
// Собирается один раз на Matcher, разделяемого мутабельного состояния нет.
type normalizer struct {
	stopwords map[string]map[string]struct{} // chain → набор стоп-токенов
	units     map[string]model.Unit
}

func newNormalizer(opt model.Options) *normalizer {
	n := &normalizer{
		stopwords: make(map[string]map[string]struct{}, len(opt.ChainStopwords)),
		units:     unifyUnitKeys(opt.UnitSynonyms),
	}
	// стоп-слова прогоняем через ту же унификацию, что и имена
	for chain, words := range opt.ChainStopwords {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(unifyRunes(w))
			for _, f := range strings.Fields(w) {
				set[f] = struct{}{}
			}
		}
		n.stopwords[chain] = set
	}
	return n
}

// Normalize — главный конвейер. Идемпотентен, на мусор не падает,
// пустой вход даёт пустую строку.
func (n *normalizer) Normalize(raw, chainID string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	out := unifyRunes(raw)
	out = strings.ToLower(out)
	out = decComma.ReplaceAllString(out, "$1.$2")
	out = dropPromoParens(out)
	out = collapseSpaces(punct.ReplaceAllString(out, " "))
	out = n.attachNumberUnits(out)
	out = n.stripStopwords(out, chainID)
	return strings.TrimSpace(out)
}

// ===== helpers =====

// Ключи таблицы единиц проходят ту же унификацию, что и имена: "גרם" из
// конфига обязан ловить "גרמ" после свёртки конечных форм.
func unifyUnitKeys(src map[string]model.Unit) map[string]model.Unit {
	out := make(map[string]model.Unit, len(src))
	for k, v := range src {
		out[strings.ToLower(unifyRunes(k))] = v
	}
	return out
}

// Свёртка конечных форм, удаление гереша/гершаим/кавычек (ק"ג → קג),
// знаки умножения → пробел.
func unifyRunes(s string) string {
	b := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '׳', '״', '\'', '"', '‘', '’', '“', '”', '`':
			continue // ק״ג, מ"ל и т.п. становятся единым токеном
		case '×', '*', '·':
			r = ' '
		default:
			if rr, ok := finals[r]; ok {
				r = rr
			}
		}
		b = append(b, r)
	}
	return string(b)
}

// Скобки без единой цифры считаем рекламой и выкидываем вместе с содержимым.
func dropPromoParens(s string) string {
	return parenRun.ReplaceAllStringFunc(s, func(m string) string {
		if hasDigit.MatchString(m) {
			return m
		}
		return " "
	})
}

// СКЛЕЙКА "число + единица": "1.5 ליטר" → "1.5ליטר". Работаем по токенам,
// а не регуляркой: \b в RE2 — ASCII и на иврите/кириллице не срабатывает.
func (n *normalizer) attachNumberUnits(s string) string {
	f := strings.Fields(s)
	out := make([]string, 0, len(f))
	for i := 0; i < len(f); i++ {
		if i+1 < len(f) && isNumber(f[i]) && n.isUnitToken(f[i+1]) {
			out = append(out, f[i]+f[i+1])
			i++
			continue
		}
		out = append(out, f[i])
	}
	return strings.Join(out, " ")
}

func (n *normalizer) isUnitToken(t string) bool {
	if t == "%" {
		return true
	}
	_, ok := n.units[t]
	return ok
}

func isNumber(t string) bool {
	if t == "" {
		return false
	}
	dot := false
	for _, r := range t {
		if r == '.' {
			if dot {
				return false
			}
			dot = true
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return t != "."
}

// Вырезаем стоп-токены сети (фирменный мусор в начале/конце имён).
func (n *normalizer) stripStopwords(s, chainID string) string {
	set, ok := n.stopwords[chainID]
	if !ok || len(set) == 0 {
		return s
	}
	f := strings.Fields(s)
	out := f[:0]
	for _, t := range f {
		if _, drop := set[t]; drop {
			continue
		}
		out = append(out, t)
	}
	return strings.Join(out, " ")
}

// Схлопывание пробелов
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
