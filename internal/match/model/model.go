package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Dimension — размерность упаковки после приведения к базовой единице.
type Dimension string

const (
	DimMass    Dimension = "mass"    // граммы
	DimVolume  Dimension = "volume"  // миллилитры
	DimCount   Dimension = "count"   // штуки
	DimUnknown Dimension = "unknown" // размер не распознан
)

// SizeIncompatible — сигнальное значение size score: размерности известны,
// но разные (масса против объёма). Такая пара отбрасывается целиком.
const SizeIncompatible = -1.0

// Unit — запись таблицы синонимов единиц: размерность + множитель
// к базовой единице (граммы / миллилитры / штуки).
type Unit struct {
	Dim    Dimension `json:"dim"`
	Factor float64   `json:"factor"`
}

// InputRecord — то, что присылают сборщики прайс-листов:
// имя как есть, цена и (опционально) отдельный текст фасовки.
// Цена и фасовка могут отсутствовать — это не ошибка.
type InputRecord struct {
	Name  string  `json:"name"`
	Price float64 `json:"price,omitempty"`
	Size  string  `json:"size,omitempty"`
}

// ProductRecord — позиция прайс-листа после нормализации.
// После вычисления NameNorm/SizeValue запись не мутируется:
// следующий цикл сбора приносит новую запись поверх старой.
type ProductRecord struct {
	ChainID   string    `json:"chain_id"`
	RawName   string    `json:"raw_name"`
	NameNorm  string    `json:"normalized_name"`
	Price     float64   `json:"price,omitempty"`
	SizeValue float64   `json:"size_value,omitempty"`
	SizeDim   Dimension `json:"size_dim"`
}

// Key — стабильный ключ записи: по нему группы узнаются между прогонами.
// Сырое имя входит в ключ: нормализация не инъективна, и два разных
// написания одной сети не должны делить ключ (и, значит, id группы).
func (r ProductRecord) Key() string {
	return strings.Join([]string{
		r.ChainID,
		r.RawName,
		r.NameNorm,
		string(r.SizeDim),
		strconv.FormatFloat(r.SizeValue, 'g', -1, 64),
	}, "|")
}

// CandidatePair — пара записей разных сетей с посчитанными метриками.
// Живёт только внутри прогона, наружу не отдаётся.
type CandidatePair struct {
	A, B       int // индексы в снапшоте записей
	NameScore  float64
	SizeScore  float64
	Confidence float64
}

// MatchGroup — набор записей (максимум одна на сеть), которые движок
// считает одним реальным товаром.
type MatchGroup struct {
	GroupID    string          `json:"group_id"`
	Records    []ProductRecord `json:"records"`
	Confidence float64         `json:"confidence"`
}

// HasChain — есть ли в группе запись указанной сети.
func (g MatchGroup) HasChain(chainID string) bool {
	for _, r := range g.Records {
		if r.ChainID == chainID {
			return true
		}
	}
	return false
}

// Options — вся конфигурация движка. Никаких глобальных реестров:
// объект собирается один раз и передаётся в Matcher.
type Options struct {
	NameWeight       float64             `json:"name_weight"`
	SizeWeight       float64             `json:"size_weight"`
	Threshold        float64             `json:"threshold"`
	NeutralSizeScore float64             `json:"neutral_size_score"`
	Workers          int                 `json:"workers,omitempty"`
	ChainStopwords   map[string][]string `json:"chain_stopwords,omitempty"`
	UnitSynonyms     map[string]Unit     `json:"unit_synonyms,omitempty"`
}

// DefaultOptions — дефолты движка. Таблица единиц покрывает иврит,
// распространённые сокращения сетей и латиницу.
func DefaultOptions() Options {
	return Options{
		NameWeight:       1,
		SizeWeight:       1,
		Threshold:        0.75,
		NeutralSizeScore: 0.5,
		ChainStopwords:   map[string][]string{},
		UnitSynonyms:     DefaultUnitSynonyms(),
	}
}

// DefaultUnitSynonyms — токен единицы → (размерность, множитель к базе).
// Гершаим/кавычки вычищаются до поиска, поэтому ק"ג здесь — קג.
func DefaultUnitSynonyms() map[string]Unit {
	return map[string]Unit{
		// масса → граммы
		"קג":   {DimMass, 1000},
		"קילו": {DimMass, 1000},
		"kg":   {DimMass, 1000},
		"גרם":  {DimMass, 1},
		"גר":   {DimMass, 1},
		"ג":    {DimMass, 1},
		"g":    {DimMass, 1},
		"gr":   {DimMass, 1},
		"מג":   {DimMass, 0.001},
		"mg":   {DimMass, 0.001},
		// объём → миллилитры
		"ליטר": {DimVolume, 1000},
		"ל":    {DimVolume, 1000},
		"l":    {DimVolume, 1000},
		"מל":   {DimVolume, 1},
		"ml":   {DimVolume, 1},
		// количество → штуки
		"יחידות": {DimCount, 1},
		"יח":     {DimCount, 1},
		"שקיות":  {DimCount, 1},
		"pcs":    {DimCount, 1},
		"units":  {DimCount, 1},
	}
}

// Validate — проверка диапазонов на старте, а не посреди прогона.
func (o Options) Validate() error {
	if o.NameWeight < 0 || o.SizeWeight < 0 {
		return fmt.Errorf("weights must be non-negative: name=%v size=%v", o.NameWeight, o.SizeWeight)
	}
	if o.NameWeight+o.SizeWeight <= 0 {
		return fmt.Errorf("weights must not both be zero")
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("threshold out of [0,1]: %v", o.Threshold)
	}
	if o.NeutralSizeScore < 0 || o.NeutralSizeScore > 1 {
		return fmt.Errorf("neutral_size_score out of [0,1]: %v", o.NeutralSizeScore)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must be >= 0: %d", o.Workers)
	}
	return nil
}

// Stats — диагностика прогона. Чисто наблюдаемость, на решения не влияет.
type Stats struct {
	Records         int `json:"records"`
	Deduped         int `json:"deduped"`
	ComparedPairs   int `json:"compared_pairs"`
	EligiblePairs   int `json:"eligible_pairs"`
	AcceptedMatches int `json:"accepted_matches"`
	Singletons      int `json:"singletons"`
	ReusedGroups    int `json:"reused_groups"`
	DissolvedGroups int `json:"dissolved_groups"`
}

type Result struct {
	Groups []MatchGroup `json:"groups"`
	Stats  Stats        `json:"stats"`
	Opts   Options      `json:"opts"`
}
