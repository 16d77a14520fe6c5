package service

import (
	"math"
	"testing"

	"pricematch-service/internal/match/model"
)

func rec(chain, norm string, val float64, dim model.Dimension) model.ProductRecord {
	return model.ProductRecord{ChainID: chain, NameNorm: norm, SizeValue: val, SizeDim: dim}
}

func TestScoreSymmetry(t *testing.T) {
	opt := model.DefaultOptions()
	pairs := [][2]model.ProductRecord{
		{rec("a", "חלב תנובה 1ליטר", 1000, model.DimVolume), rec("b", "חלב טרה 1ליטר", 1000, model.DimVolume)},
		{rec("a", "קפה", 0, model.DimUnknown), rec("b", "קפה שחור", 200, model.DimMass)},
		{rec("a", "לחם", 750, model.DimMass), rec("b", "לחמניות", 500, model.DimVolume)},
		{rec("a", "", 0, model.DimUnknown), rec("b", "", 0, model.DimUnknown)},
	}
	for _, p := range pairs {
		n1, s1 := Score(p[0], p[1], opt)
		n2, s2 := Score(p[1], p[0], opt)
		if n1 != n2 || s1 != s2 {
			t.Errorf("asymmetric score: (%v,%v) vs (%v,%v)", n1, s1, n2, s2)
		}
	}
}

func TestNameScore(t *testing.T) {
	// пусто против пусто — ноль информации, не совпадение
	if s := nameScore("", ""); s != 0 {
		t.Errorf("empty vs empty = %v, want 0", s)
	}
	if s := nameScore("חלב", ""); s != 0 {
		t.Errorf("vs empty = %v, want 0", s)
	}
	if s := nameScore("חלב תנובה", "חלב תנובה"); s != 1 {
		t.Errorf("identical = %v, want 1", s)
	}
	// дистанция 1 на длине 4: 1 - 1/4
	if s := nameScore("חלבה", "חלבי"); math.Abs(s-0.75) > 1e-9 {
		t.Errorf("one substitution = %v, want 0.75", s)
	}
}

func TestSizeScore(t *testing.T) {
	opt := model.DefaultOptions()

	a := rec("a", "x", 1000, model.DimVolume)
	b := rec("b", "x", 1500, model.DimVolume)
	if s := sizeScore(a, b, opt.NeutralSizeScore); math.Abs(s-(1-500.0/1500.0)) > 1e-9 {
		t.Errorf("same dim = %v, want %v", s, 1-500.0/1500.0)
	}

	// любая неизвестная сторона — нейтральный балл, не штраф
	u := rec("b", "x", 0, model.DimUnknown)
	if s := sizeScore(a, u, opt.NeutralSizeScore); s != opt.NeutralSizeScore {
		t.Errorf("unknown = %v, want neutral %v", s, opt.NeutralSizeScore)
	}

	// известные разные размерности — несовместимо
	m := rec("b", "x", 1000, model.DimMass)
	if s := sizeScore(a, m, opt.NeutralSizeScore); s != model.SizeIncompatible {
		t.Errorf("mass vs volume = %v, want incompatible", s)
	}
	if c := combined(1, model.SizeIncompatible, opt); c != 0 {
		t.Errorf("incompatible confidence = %v, want 0", c)
	}
}

func TestCombinedWeights(t *testing.T) {
	opt := model.DefaultOptions()
	if c := combined(1, 0.5, opt); math.Abs(c-0.75) > 1e-9 {
		t.Errorf("equal weights = %v, want 0.75", c)
	}
	opt.NameWeight, opt.SizeWeight = 3, 1
	if c := combined(1, 0.5, opt); math.Abs(c-0.875) > 1e-9 {
		t.Errorf("3:1 weights = %v, want 0.875", c)
	}
}
