package service

import (
	"testing"

	"pricematch-service/internal/match/model"
)

func TestNormalizePipeline(t *testing.T) {
	opt := model.DefaultOptions()
	opt.ChainStopwords = map[string][]string{
		"rami_levy": {"מבית", "רמי"},
	}
	n := newNormalizer(opt)

	tests := []struct {
		name  string
		raw   string
		chain string
		want  string
	}{
		{
			name: "gershayim collapse and unit glue",
			raw:  "קוקה-קולה, 1500 מ״ל",
			want: "קוקה קולה 1500מל",
		},
		{
			name: "decimal and liter glue",
			raw:  "קוקה קולה 1.5 ליטר",
			want: "קוקה קולה 1.5ליטר",
		},
		{
			name: "decimal comma",
			raw:  "חלב 1,5 ליטר",
			want: "חלב 1.5ליטר",
		},
		{
			// конечная ם сворачивается, склейка с единицей работает и после свёртки
			name: "promo parens dropped, final mem folded in unit",
			raw:  "שוקולד פרה (מבצע!) 100 גרם",
			want: "שוקולד פרה 100גרמ",
		},
		{
			name: "latin lowercased",
			raw:  "Coca-Cola  Zero  330 ml",
			want: "coca cola zero 330ml",
		},
		{
			name:  "chain stopwords stripped",
			raw:   "מבית רמי לחם אחיד",
			chain: "rami_levy",
			want:  "לחמ אחיד",
		},
		{
			name:  "stopwords of other chain untouched",
			raw:   "מבית רמי לחם אחיד",
			chain: "shufersal",
			want:  "מבית רמי לחמ אחיד",
		},
		{
			name: "percent glue",
			raw:  "חלב 3 % 1 ליטר",
			want: "חלב 3% 1ליטר",
		},
		{name: "empty", raw: "", want: ""},
		{name: "whitespace only", raw: "   \t ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.raw, tt.chain)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			// идемпотентность: второй прогон ничего не меняет
			if again := n.Normalize(got, tt.chain); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeFinalForms(t *testing.T) {
	n := newNormalizer(model.DefaultOptions())
	a := n.Normalize("תפוץ", "")
	b := n.Normalize("תפוצ", "")
	if a != b {
		t.Errorf("final form not folded: %q vs %q", a, b)
	}
}
