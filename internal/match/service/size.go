package service

import (
	"regexp"
	"strconv"
	"strings"

	"pricematch-service/internal/match/model"
)

// sizeExtractor — поиск токена "число + единица" и приведение к базовой
// единице размерности (граммы / миллилитры / штуки).
//
// Работает по СЫРОМУ имени (или отдельному полю фасовки): после склейки и
// стоп-слов нормализатора порядок токенов уже другой, а контракт требует
// консистентного выбора стороны.
type sizeExtractor struct {
	units map[string]model.Unit
}

// число + следующий буквенный хвост: "1.5 ליטר", "1500מל", "500 g"
var numUnitRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([\p{L}%]+)`)

// количество "словом вперёд": "מארז 6", "שישיית 1.5 ליטר"-стиль не ловим,
// только чистые счётные фразы
var packRe = regexp.MustCompile(`(?:מארז|אריזת|שישיית|רביעיית|pack of|pack)\s*(\d+)`)

func newSizeExtractor(opt model.Options) *sizeExtractor {
	return &sizeExtractor{units: unifyUnitKeys(opt.UnitSynonyms)}
}

// Extract — (значение в базовой единице, размерность). Ничего не нашли —
// DimUnknown, это штатный исход, а не ошибка.
//
// Из нескольких кандидатов побеждает самый правый: номер модели в начале
// имени не должен затмить настоящую фасовку в конце.
func (e *sizeExtractor) Extract(name string) (float64, model.Dimension) {
	s := strings.ToLower(unifyRunes(name))
	s = decComma.ReplaceAllString(s, "$1.$2")

	bestPos := -1
	bestVal := 0.0
	bestDim := model.DimUnknown

	for _, m := range numUnitRe.FindAllStringSubmatchIndex(s, -1) {
		numStr := s[m[2]:m[3]]
		unitStr := s[m[4]:m[5]]
		u, ok := e.units[unitStr]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			continue
		}
		if m[0] >= bestPos {
			bestPos = m[0]
			bestVal = v * u.Factor
			bestDim = u.Dim
		}
	}

	for _, m := range packRe.FindAllStringSubmatchIndex(s, -1) {
		v, err := strconv.ParseFloat(s[m[2]:m[3]], 64)
		if err != nil {
			continue
		}
		if m[0] >= bestPos {
			bestPos = m[0]
			bestVal = v
			bestDim = model.DimCount
		}
	}

	if bestPos < 0 {
		return 0, model.DimUnknown
	}
	return bestVal, bestDim
}
