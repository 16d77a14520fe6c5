package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var rxKeepNums = regexp.MustCompile(`[^\d\.\-]`)

// ParsePrice парсит цены из прайс-листов: "₪12.90", "12,90 ש"ח",
// "1 234,50" (NBSP/NNBSP), "NIS 7.5" и т.п. Второе значение — получилось ли.
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// убрать валюту, неразрывные/узкие пробелы, запятую → точка
	repl := strings.NewReplacer(
		"₪", "", "ש\"ח", "", "שח", "", "NIS", "", "nis", "",
		"\u00A0", "", "\u202F", "", " ", "", "\t", "", ",", ".",
	)
	s = repl.Replace(s)
	// оставить только цифры, точку и минус (на случай мусора)
	s = rxKeepNums.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
