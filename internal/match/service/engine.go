package service

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pricematch-service/internal/match/model"
	"pricematch-service/internal/repo"
)

// scorePairs — параллельная стадия: независимые сравнения раскидываются по
// воркерам, результат сливается и сортируется. Возвращает только пары,
// прошедшие порог (>= принимает, чуть ниже — нет) и совместимые по
// размерности; вторым значением — сколько пар вообще сравнили.
func scorePairs(ctx context.Context, records []model.ProductRecord, opt model.Options) ([]model.CandidatePair, int, error) {
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	idx := buildIndex(records)

	jobs := make(chan int)
	var (
		mu       sync.Mutex
		pairs    []model.CandidatePair
		compared int
		wg       sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]model.CandidatePair, 0, 64)
			n := 0
			for i := range jobs {
				for _, j := range idx.candidates(records, i) {
					ns, ss := Score(records[i], records[j], opt)
					n++
					conf := combined(ns, ss, opt)
					if ss == model.SizeIncompatible || conf < opt.Threshold {
						continue
					}
					p := model.CandidatePair{A: i, B: j, NameScore: ns, SizeScore: ss, Confidence: conf}
					// каноническая ориентация пары — для стабильного tie-break
					if recLess(records[j], records[i]) {
						p.A, p.B = p.B, p.A
					}
					local = append(local, p)
				}
			}
			mu.Lock()
			pairs = append(pairs, local...)
			compared += n
			mu.Unlock()
		}()
	}

feed:
	for i := range records {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		// отмена = выбросить частичный результат
		return nil, 0, err
	}

	sortPairs(records, pairs)
	return pairs, compared, nil
}

func recLess(a, b model.ProductRecord) bool {
	if a.NameNorm != b.NameNorm {
		return a.NameNorm < b.NameNorm
	}
	if a.ChainID != b.ChainID {
		return a.ChainID < b.ChainID
	}
	if a.RawName != b.RawName {
		return a.RawName < b.RawName
	}
	return a.Key() < b.Key()
}

// Убывание уверенности; равные — лексикографически по нормализованным
// именам и сетям, чтобы два прогона давали одинаковый порядок.
func sortPairs(records []model.ProductRecord, pairs []model.CandidatePair) {
	sort.Slice(pairs, func(x, y int) bool {
		px, py := pairs[x], pairs[y]
		if px.Confidence != py.Confidence {
			return px.Confidence > py.Confidence
		}
		ax, bx := records[px.A], records[px.B]
		ay, by := records[py.A], records[py.B]
		if ax.NameNorm != ay.NameNorm {
			return ax.NameNorm < ay.NameNorm
		}
		if bx.NameNorm != by.NameNorm {
			return bx.NameNorm < by.NameNorm
		}
		if ax.ChainID != ay.ChainID {
			return ax.ChainID < ay.ChainID
		}
		if bx.ChainID != by.ChainID {
			return bx.ChainID < by.ChainID
		}
		return ax.Key()+bx.Key() < ay.Key()+by.Key()
	})
}

// groupBuild — группа в процессе сборки.
type groupBuild struct {
	members []int
	chains  map[string]struct{}
	confSum float64
	confN   int
}

func (g *groupBuild) add(records []model.ProductRecord, i int) {
	g.members = append(g.members, i)
	g.chains[records[i].ChainID] = struct{}{}
}

// resolve — жадная однопоточная развязка many-to-many. Пары идут по
// убыванию уверенности; пара принимается, если ни одна из записей не сидит
// в чужой группе, где её сеть уже занята. Кто не попал ни в одну пару —
// одиночная группа.
func resolve(records []model.ProductRecord, pairs []model.CandidatePair) ([]*groupBuild, int) {
	byRec := make(map[int]*groupBuild, len(records))
	var groups []*groupBuild
	accepted := 0

	for _, p := range pairs {
		ga, gb := byRec[p.A], byRec[p.B]
		switch {
		case ga == nil && gb == nil:
			g := &groupBuild{chains: make(map[string]struct{})}
			g.add(records, p.A)
			g.add(records, p.B)
			g.confSum += p.Confidence
			g.confN++
			byRec[p.A], byRec[p.B] = g, g
			groups = append(groups, g)
			accepted++
		case ga != nil && gb == nil:
			if _, clash := ga.chains[records[p.B].ChainID]; !clash {
				ga.add(records, p.B)
				ga.confSum += p.Confidence
				ga.confN++
				byRec[p.B] = ga
				accepted++
			}
		case ga == nil && gb != nil:
			if _, clash := gb.chains[records[p.A].ChainID]; !clash {
				gb.add(records, p.A)
				gb.confSum += p.Confidence
				gb.confN++
				byRec[p.A] = gb
				accepted++
			}
		case ga == gb:
			// внутренняя пара уже собранной группы — учитываем в уверенности
			ga.confSum += p.Confidence
			ga.confN++
		default:
			// обе записи уже в разных группах — пропуск, группы не сливаем
		}
	}

	// одиночки: товар известен только одной сети
	for i := range records {
		if byRec[i] != nil {
			continue
		}
		g := &groupBuild{chains: make(map[string]struct{})}
		g.add(records, i)
		groups = append(groups, g)
	}

	return groups, accepted
}

// finalizeGroups — id групп и стабильность между прогонами.
//
// id детерминирован: UUIDv5 от отсортированных ключей участников, никакой
// случайности. Прошлый id переиспользуется, когда общие участники — строгое
// большинство И старого, И нового состава; иначе старая группа считается
// распавшейся. Каждый прошлый id выдаётся не более одного раза.
func finalizeGroups(records []model.ProductRecord, builds []*groupBuild, prior []repo.StoredGroup) ([]model.MatchGroup, int, int) {
	type newGroup struct {
		members []int
		keys    []string // отсортированы
	}

	groups := make([]newGroup, 0, len(builds))
	for _, g := range builds {
		members := append([]int(nil), g.members...)
		sort.Slice(members, func(x, y int) bool {
			return recLess(records[members[x]], records[members[y]])
		})
		keys := make([]string, len(members))
		for i, m := range members {
			keys[i] = records[m].Key()
		}
		sort.Strings(keys)
		groups = append(groups, newGroup{members: members, keys: keys})
	}
	// детерминированный порядок раздачи прошлых id
	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(x, y int) bool {
		return strings.Join(groups[order[x]].keys, "\n") < strings.Join(groups[order[y]].keys, "\n")
	})

	keyToPrior := make(map[string]string)
	priorSize := make(map[string]int, len(prior))
	for _, pg := range prior {
		priorSize[pg.GroupID] = len(pg.MemberKeys)
		for _, k := range pg.MemberKeys {
			keyToPrior[k] = pg.GroupID
		}
	}

	ids := make([]string, len(groups))
	taken := make(map[string]bool)
	touched := make(map[string]bool) // прошлые группы, задетые этим снапшотом
	reused := 0

	for _, gi := range order {
		g := groups[gi]
		overlap := make(map[string]int)
		for _, k := range g.keys {
			if pid, ok := keyToPrior[k]; ok {
				overlap[pid]++
				touched[pid] = true
			}
		}
		bestID, bestOv := "", 0
		for pid, ov := range overlap {
			if ov > bestOv || (ov == bestOv && pid < bestID) || bestID == "" {
				bestID, bestOv = pid, ov
			}
		}
		if bestID != "" && !taken[bestID] &&
			2*bestOv > priorSize[bestID] && 2*bestOv > len(g.keys) {
			ids[gi] = bestID
			taken[bestID] = true
			reused++
			continue
		}
		ids[gi] = uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(g.keys, "\n"))).String()
	}

	dissolved := 0
	for pid := range touched {
		if !taken[pid] {
			dissolved++
		}
	}

	out := make([]model.MatchGroup, 0, len(groups))
	for _, gi := range order {
		g := groups[gi]
		b := builds[gi]
		mg := model.MatchGroup{GroupID: ids[gi]}
		for _, m := range g.members {
			mg.Records = append(mg.Records, records[m])
		}
		if b.confN > 0 {
			mg.Confidence = b.confSum / float64(b.confN)
		} else {
			mg.Confidence = 1 // одиночка: тривиально согласована сама с собой
		}
		out = append(out, mg)
	}
	return out, reused, dissolved
}
