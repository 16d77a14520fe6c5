package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"pricematch-service/internal/match/model"
	"pricematch-service/internal/repo"
)

// Matcher — движок сопоставления товаров между сетями. Конфигурация и
// таблицы компилируются один раз на конструкторе; прогоны сериализуются
// мьютексом — назначение group id требует эксклюзива над состоянием.
type Matcher struct {
	opt   model.Options
	store repo.GroupStore
	log   zerolog.Logger

	mu sync.Mutex
}

func NewMatcher(opt model.Options, store repo.GroupStore, log zerolog.Logger) (*Matcher, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{opt: opt, store: store, log: log}, nil
}

// Options — текущая конфигурация движка (копия).
func (m *Matcher) Options() model.Options { return m.opt }

// Run — полный прогон на снапшоте записей с конфигурацией движка.
func (m *Matcher) Run(ctx context.Context, chains map[string][]model.InputRecord) (model.Result, error) {
	return m.RunWith(ctx, chains, m.opt)
}

// RunWith — прогон с разовыми опциями (переопределения из запроса).
// Невалидные опции — ошибка до начала работы, не посреди прогона.
func (m *Matcher) RunWith(ctx context.Context, chains map[string][]model.InputRecord, opt model.Options) (model.Result, error) {
	if err := opt.Validate(); err != nil {
		return model.Result{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	norm := newNormalizer(opt)
	sizes := newSizeExtractor(opt)

	var stats model.Stats

	// 1) Снапшот: сети в лексикографическом порядке, внутри сети — порядок
	// поступления; дубль raw_name замещается более свежим (последним).
	records := buildSnapshot(chains, norm, sizes, &stats)

	if err := ctx.Err(); err != nil {
		return model.Result{}, err
	}

	// 2) Параллельная оценка кандидатов из грубой корзины
	pairs, compared, err := scorePairs(ctx, records, opt)
	if err != nil {
		return model.Result{}, err
	}
	stats.ComparedPairs = compared
	stats.EligiblePairs = len(pairs)

	// 3) Однопоточная жадная развязка (порядок существенен)
	builds, accepted := resolve(records, pairs)
	stats.AcceptedMatches = accepted

	// 4) Стабильность id против прошлого прогона
	prior, err := m.store.Load(ctx)
	if err != nil {
		return model.Result{}, err
	}
	groups, reused, dissolved := finalizeGroups(records, builds, prior)
	stats.ReusedGroups = reused
	stats.DissolvedGroups = dissolved
	for _, g := range groups {
		if len(g.Records) == 1 {
			stats.Singletons++
		}
	}

	// 5) Снимок групп — в хранилище, целиком
	stored := make([]repo.StoredGroup, len(groups))
	for i, g := range groups {
		keys := make([]string, len(g.Records))
		for j, r := range g.Records {
			keys[j] = r.Key()
		}
		sort.Strings(keys)
		stored[i] = repo.StoredGroup{GroupID: g.GroupID, MemberKeys: keys}
	}
	if err := m.store.Save(ctx, stored); err != nil {
		return model.Result{}, err
	}

	m.log.Info().
		Int("records", stats.Records).
		Int("compared", stats.ComparedPairs).
		Int("eligible", stats.EligiblePairs).
		Int("accepted", stats.AcceptedMatches).
		Int("singletons", stats.Singletons).
		Int("reused", stats.ReusedGroups).
		Int("dissolved", stats.DissolvedGroups).
		Msg("match run done")

	return model.Result{Groups: groups, Stats: stats, Opts: opt}, nil
}

// buildSnapshot — дедуп по raw_name внутри сети (свежее замещает старое),
// нормализация и извлечение фасовки. Фасовку ищем в отдельном поле, если
// сборщик его прислал, иначе — в сыром имени.
func buildSnapshot(chains map[string][]model.InputRecord, norm *normalizer, sizes *sizeExtractor, stats *model.Stats) []model.ProductRecord {
	chainIDs := make([]string, 0, len(chains))
	for id := range chains {
		chainIDs = append(chainIDs, id)
	}
	sort.Strings(chainIDs)

	var records []model.ProductRecord
	for _, chainID := range chainIDs {
		byName := make(map[string]int)
		for _, in := range chains[chainID] {
			stats.Records++
			name := strings.TrimSpace(in.Name)
			if name == "" {
				continue
			}
			rec := model.ProductRecord{
				ChainID: chainID,
				RawName: name,
				Price:   in.Price,
			}
			rec.NameNorm = norm.Normalize(name, chainID)
			src := in.Size
			if strings.TrimSpace(src) == "" {
				src = name
			}
			rec.SizeValue, rec.SizeDim = sizes.Extract(src)

			if at, dup := byName[name]; dup {
				records[at] = rec // более свежая запись той же позиции
				stats.Deduped++
				continue
			}
			byName[name] = len(records)
			records = append(records, rec)
		}
	}
	return records
}
