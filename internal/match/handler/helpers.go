// Резолв колонок прайс-листа: сети называют заголовки как попало,
// на иврите, английском и русском.
package handler

import (
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"pricematch-service/internal/match/model"
	"pricematch-service/internal/utils"
)

const (
	defaultNameCols  = "שם|מוצר|תיאור|name|product|item|наименование|товар"
	defaultPriceCols = "מחיר|price|цена"
	defaultSizeCols  = "גודל|תכולה|משקל|כמות|אריזה|size|volume|weight|qty"
)

type columnMapping struct {
	NameKey  string
	PriceKey string
	SizeKey  string
}

var nonAlnum = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// нормализуем имя колонки: нижний регистр, убираем служ.символы/множественные пробелы
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ").Replace(s)
	s = nonAlnum.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// ищем реальный ключ в записи по желаемому имени.
// Поддерживает варианты через "|" (например: "שם|name")
func resolveKey(rec map[string]string, want string) string {
	want = strings.TrimSpace(want)
	if want == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	// точное совпадение (как есть)
	for _, a := range alts {
		if _, ok := rec[a]; ok {
			return a
		}
	}

	var nWantAll []string
	for _, a := range alts {
		nWantAll = append(nWantAll, normHeaderKey(a))
	}

	// нормализованные сравнения и contains (для составных заголовков:
	// "מחיר ליחידה" содержит "מחיר")
	bestKey := ""
	bestScore := 0
	for k := range rec {
		nk := normHeaderKey(k)
		for _, n := range nWantAll {
			if nk == n {
				return k
			}
		}
		score := 0
		for _, n := range nWantAll {
			if n == "" {
				continue
			}
			if strings.Contains(nk, n) || strings.Contains(n, nk) {
				if len(n) > score {
					score = len(n)
				}
			}
		}
		if score > bestScore || (score == bestScore && score > 0 && k < bestKey) {
			bestScore, bestKey = score, k
		}
	}
	return bestKey
}

// повтор шапки посреди данных — частый артефакт постраничных выгрузок
func looksLikeHeaderMap(m map[string]string) bool {
	cnt := 0
	for _, v := range m {
		s := strings.ToLower(strings.TrimSpace(v))
		if strings.Contains(s, "מחיר") || strings.Contains(s, "שם") ||
			strings.Contains(s, "price") || strings.Contains(s, "наимен") {
			cnt++
		}
	}
	return cnt >= 2
}

// toInputRecords — строки прайс-листа → входные записи движка.
// Колонки резолвим один раз по первой строке: заголовки у файла общие.
func toInputRecords(maps []map[string]string, m columnMapping) []model.InputRecord {
	if len(maps) == 0 {
		return nil
	}
	nameKey := resolveKey(maps[0], m.NameKey)
	priceKey := resolveKey(maps[0], m.PriceKey)
	sizeKey := resolveKey(maps[0], m.SizeKey)

	recs := make([]model.InputRecord, 0, len(maps))
	for _, rec := range maps {
		if looksLikeHeaderMap(rec) {
			continue
		}
		name := strings.TrimSpace(rec[nameKey])
		if name == "" {
			continue
		}
		price := 0.0
		if priceKey != "" {
			if p, ok := utils.ParsePrice(rec[priceKey]); ok {
				price = p
			}
		}
		size := ""
		if sizeKey != "" && sizeKey != nameKey {
			size = strings.TrimSpace(rec[sizeKey])
		}
		recs = append(recs, model.InputRecord{Name: name, Price: price, Size: size})
	}
	return recs
}

func formOr(r *http.Request, key, def string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return def
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func toFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}
