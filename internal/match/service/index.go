package service

import (
	"sort"

	"pricematch-service/internal/match/model"
)

// Грубая корзина кандидатов: инвертированный индекс по триграммам
// нормализованных имён. Сравниваем только пары, делящие хотя бы одну
// триграмму, — это и ограничивает O(n²) на каталогах в тысячи позиций.
type index struct {
	inv map[string][]int // trigram → индексы записей
}

func buildIndex(records []model.ProductRecord) *index {
	idx := &index{inv: make(map[string][]int)}
	for i, r := range records {
		if r.NameNorm == "" {
			continue
		}
		for g := range trigramSet(r.NameNorm) {
			idx.inv[g] = append(idx.inv[g], i)
		}
	}
	return idx
}

func trigramSet(s string) map[string]struct{} {
	m := make(map[string]struct{})
	if s == "" {
		return m
	}
	p := " " + s + " "
	r := []rune(p)
	if len(r) < 3 {
		m[p] = struct{}{}
		return m
	}
	for i := 0; i <= len(r)-3; i++ {
		m[string(r[i:i+3])] = struct{}{}
	}
	return m
}

// candidates — индексы записей ДРУГИХ сетей с общей триграммой, j > i,
// чтобы каждая пара всплывала ровно один раз. Отсортировано — порядок
// кандидатов детерминирован независимо от обхода map.
func (idx *index) candidates(records []model.ProductRecord, i int) []int {
	r := records[i]
	if r.NameNorm == "" {
		return nil
	}
	seen := make(map[int]struct{})
	for g := range trigramSet(r.NameNorm) {
		for _, j := range idx.inv[g] {
			if j <= i || records[j].ChainID == r.ChainID {
				continue
			}
			seen[j] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for j := range seen {
		out = append(out, j)
	}
	sort.Ints(out)
	return out
}
