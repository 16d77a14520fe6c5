package service

import (
	"math"

	"pricematch-service/internal/match/model"
)

// nameScore — normalized edit-distance similarity in [0..1].
// Пустое против пустого — 0: отсутствие информации, не совпадение.
func nameScore(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	d := levenshtein(a, b)
	m := len([]rune(a))
	if mb := len([]rune(b)); mb > m {
		m = mb
	}
	if m == 0 {
		return 0
	}
	return 1 - float64(d)/float64(m)
}

// sizeScore — совместимость фасовок.
// Любая сторона unknown → нейтральный балл (незнание не штрафуем).
// Известные, но разные размерности → SizeIncompatible, пара вылетает целиком.
func sizeScore(a, b model.ProductRecord, neutral float64) float64 {
	if a.SizeDim == model.DimUnknown || b.SizeDim == model.DimUnknown {
		return neutral
	}
	if a.SizeDim != b.SizeDim {
		return model.SizeIncompatible
	}
	va, vb := a.SizeValue, b.SizeValue
	m := math.Max(va, vb)
	if m == 0 {
		return 1
	}
	s := 1 - math.Abs(va-vb)/m
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// combined — взвешенное среднее. Несовместимые размерности давят
// уверенность в ноль независимо от похожести имён.
func combined(nameS, sizeS float64, opt model.Options) float64 {
	if sizeS == model.SizeIncompatible {
		return 0
	}
	return (opt.NameWeight*nameS + opt.SizeWeight*sizeS) / (opt.NameWeight + opt.SizeWeight)
}

// Score — симметричная оценка пары записей: score(a,b) == score(b,a).
func Score(a, b model.ProductRecord, opt model.Options) (float64, float64) {
	return nameScore(a.NameNorm, b.NameNorm), sizeScore(a, b, opt.NeutralSizeScore)
}
