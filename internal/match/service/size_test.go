package service

import (
	"testing"

	"pricematch-service/internal/match/model"
)

func TestExtractSize(t *testing.T) {
	e := newSizeExtractor(model.DefaultOptions())

	tests := []struct {
		name    string
		in      string
		wantVal float64
		wantDim model.Dimension
	}{
		{"liter with decimal", "קוקה קולה 1.5 ליטר", 1500, model.DimVolume},
		{"ml with gershayim", "קוקה-קולה, 1500 מ״ל", 1500, model.DimVolume},
		{"one liter", "חלב 3% 1 ליטר", 1000, model.DimVolume},
		{"one kg", "חלב 3% 1 ק״ג", 1000, model.DimMass},
		{"grams", "שוקולד פרה 100 גרם", 100, model.DimMass},
		{"glued grams", "קפה נמס 200גרם", 200, model.DimMass},
		{"decimal comma kg", "עוף שלם 1,2 ק\"ג", 1200, model.DimMass},
		{"count units", "ביצים 12 יחידות", 12, model.DimCount},
		{"pack prefix", "ביצים מארז 12", 12, model.DimCount},
		{"english liters", "Coca Cola 2 l", 2000, model.DimVolume},
		{"english ml", "shampoo 750ml", 750, model.DimVolume},
		{"rightmost wins over model number", "קפה 500 טורקי 250 גרם", 250, model.DimMass},
		{"no size", "לחם אחיד פרוס", 0, model.DimUnknown},
		{"bare number is not a size", "מארז חטיפים", 0, model.DimUnknown},
		{"empty", "", 0, model.DimUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, d := e.Extract(tt.in)
			if v != tt.wantVal || d != tt.wantDim {
				t.Errorf("Extract(%q) = (%v, %s), want (%v, %s)", tt.in, v, d, tt.wantVal, tt.wantDim)
			}
		})
	}
}

func TestExtractSizeFinalFormSynonym(t *testing.T) {
	// ключ таблицы с конечной буквой обязан ловить вход с конечной буквой:
	// обе стороны проходят одну и ту же свёртку
	opt := model.DefaultOptions()
	opt.UnitSynonyms["קרטונים"] = model.Unit{Dim: model.DimCount, Factor: 1}
	e := newSizeExtractor(opt)

	v, d := e.Extract("חלב 3 קרטונים")
	if v != 3 || d != model.DimCount {
		t.Errorf("final-form synonym: got (%v, %s), want (3, count)", v, d)
	}
}

func TestExtractSizeCustomSynonyms(t *testing.T) {
	opt := model.DefaultOptions()
	// у сети свой жаргон для упаковки
	opt.UnitSynonyms["טעימות"] = model.Unit{Dim: model.DimCount, Factor: 1}
	e := newSizeExtractor(opt)

	v, d := e.Extract("גבינות 8 טעימות")
	if v != 8 || d != model.DimCount {
		t.Errorf("custom synonym: got (%v, %s), want (8, count)", v, d)
	}
}
