package handler

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"pricematch-service/internal/fileio"
	"pricematch-service/internal/match/model"
	"pricematch-service/internal/match/service"
)

// matchRequest — JSON-вход от сборщиков: записи по сетям + разовые
// переопределения опций.
type matchRequest struct {
	Chains  map[string][]model.InputRecord `json:"chains"`
	Options *optionsPatch                  `json:"options,omitempty"`
}

type optionsPatch struct {
	Threshold        *float64 `json:"threshold,omitempty"`
	NameWeight       *float64 `json:"name_weight,omitempty"`
	SizeWeight       *float64 `json:"size_weight,omitempty"`
	NeutralSizeScore *float64 `json:"neutral_size_score,omitempty"`
	Workers          *int     `json:"workers,omitempty"`
}

func (p *optionsPatch) apply(opt model.Options) model.Options {
	if p == nil {
		return opt
	}
	if p.Threshold != nil {
		opt.Threshold = *p.Threshold
	}
	if p.NameWeight != nil {
		opt.NameWeight = *p.NameWeight
	}
	if p.SizeWeight != nil {
		opt.SizeWeight = *p.SizeWeight
	}
	if p.NeutralSizeScore != nil {
		opt.NeutralSizeScore = *p.NeutralSizeScore
	}
	if p.Workers != nil {
		opt.Workers = *p.Workers
	}
	return opt
}

// Match — POST /match: снапшот записей в JSON, ответ — группы с
// уверенностью и диагностикой прогона.
func Match(m *service.Matcher, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := reqLogger(logger, r)

		defer r.Body.Close()
		var req matchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Chains) == 0 {
			http.Error(w, "no chains in request", http.StatusBadRequest)
			return
		}

		opt := req.Options.apply(m.Options())
		res, err := m.RunWith(r.Context(), req.Chains, opt)
		if err != nil {
			status := http.StatusBadRequest // невалидные опции
			if r.Context().Err() != nil {
				status = http.StatusRequestTimeout
			}
			http.Error(w, err.Error(), status)
			return
		}

		writeResult(w, log, res)
		log.Info().
			Int("chains", len(req.Chains)).
			Int("groups", len(res.Groups)).
			Dur("elapsed", time.Since(start)).
			Msg("match done")
	}
}

// MatchFiles — POST /match/files: multipart, имя файлового поля = id сети.
// Колонки прайс-листа резолвятся эвристикой по заголовкам, опции движка
// можно переопределить обычными form-полями.
func MatchFiles(m *service.Matcher, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := reqLogger(logger, r)

		defer r.Body.Close()
		if err := r.ParseMultipartForm(64 << 20); err != nil {
			http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		if r.MultipartForm == nil || len(r.MultipartForm.File) == 0 {
			http.Error(w, "no price list files", http.StatusBadRequest)
			return
		}

		headerRow := atoi(r.FormValue("header_row"), 1)
		mapping := columnMapping{
			NameKey:  formOr(r, "name_col", defaultNameCols),
			PriceKey: formOr(r, "price_col", defaultPriceCols),
			SizeKey:  formOr(r, "size_col", defaultSizeCols),
		}

		// поля с файлами = сети; порядок обхода — детерминированный
		fields := make([]string, 0, len(r.MultipartForm.File))
		for f := range r.MultipartForm.File {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		chains := make(map[string][]model.InputRecord, len(fields))
		for _, chainID := range fields {
			headers := r.MultipartForm.File[chainID]
			if len(headers) == 0 {
				continue
			}
			fh := headers[0]
			f, err := fh.Open()
			if err != nil {
				http.Error(w, "open "+chainID+": "+err.Error(), http.StatusBadRequest)
				return
			}
			rows, err := fileio.ReadAnyMaps(f, fh.Filename, headerRow)
			f.Close()
			if err != nil {
				http.Error(w, "read "+chainID+": "+err.Error(), http.StatusBadRequest)
				return
			}
			recs := toInputRecords(rows, mapping)
			log.Debug().
				Str("chain", chainID).
				Str("file", fh.Filename).
				Int("rows", len(rows)).
				Int("records", len(recs)).
				Msg("price list parsed")
			chains[chainID] = recs
		}

		opt := m.Options()
		opt.Threshold = toFloat(r.FormValue("threshold"), opt.Threshold)
		opt.NameWeight = toFloat(r.FormValue("name_weight"), opt.NameWeight)
		opt.SizeWeight = toFloat(r.FormValue("size_weight"), opt.SizeWeight)
		opt.NeutralSizeScore = toFloat(r.FormValue("neutral_size_score"), opt.NeutralSizeScore)
		opt.Workers = atoi(r.FormValue("workers"), opt.Workers)

		res, err := m.RunWith(r.Context(), chains, opt)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeResult(w, log, res)
		log.Info().
			Int("chains", len(chains)).
			Int("groups", len(res.Groups)).
			Dur("elapsed", time.Since(start)).
			Msg("match files done")
	}
}

func reqLogger(logger zerolog.Logger, r *http.Request) zerolog.Logger {
	if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
		return logger.With().Str("req_id", reqID).Logger()
	}
	return logger
}

func writeResult(w http.ResponseWriter, log zerolog.Logger, res model.Result) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Error().Err(err).Msg("write json")
	}
}
