package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"pricematch-service/internal/match/model"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string
	DBPath       string // пусто → хранилище групп в памяти

	Match model.Options
}

// Load — конфигурация из окружения + опциональные JSON-переопределения
// таблиц стоп-слов и единиц. Кривые численные опции — фатальная ошибка
// старта, а не середины прогона.
func Load() (Config, error) {
	port, err := getint("PORT", 8083)
	if err != nil {
		return Config{}, err
	}
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("PORT out of range: %d", port)
	}
	mb, err := getint("MAX_UPLOAD_MB", 256)
	if err != nil {
		return Config{}, err
	}
	if mb <= 0 {
		return Config{}, fmt.Errorf("MAX_UPLOAD_MB must be positive: %d", mb)
	}
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")

	opt := model.DefaultOptions()
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"MATCH_THRESHOLD", &opt.Threshold},
		{"NAME_WEIGHT", &opt.NameWeight},
		{"SIZE_WEIGHT", &opt.SizeWeight},
		{"NEUTRAL_SIZE_SCORE", &opt.NeutralSizeScore},
	} {
		if err := getfloat(f.key, f.dst); err != nil {
			return Config{}, err
		}
	}
	if opt.Workers, err = getint("MATCH_WORKERS", 0); err != nil {
		return Config{}, err
	}

	if f := os.Getenv("STOPWORDS_FILE"); f != "" {
		if err := loadJSON(f, &opt.ChainStopwords); err != nil {
			return Config{}, fmt.Errorf("stopwords file: %w", err)
		}
	}
	if f := os.Getenv("UNITS_FILE"); f != "" {
		units := map[string]model.Unit{}
		if err := loadJSON(f, &units); err != nil {
			return Config{}, fmt.Errorf("units file: %w", err)
		}
		// переопределения поверх дефолтной таблицы
		for k, v := range units {
			opt.UnitSynonyms[k] = v
		}
	}

	if err := opt.Validate(); err != nil {
		return Config{}, fmt.Errorf("matcher options: %w", err)
	}

	return Config{
		Host:         getenv("HOST", "127.0.0.1"),
		Port:         port,
		AllowOrigins: origins,
		LogLevel:     getenv("LOG_LEVEL", "info"),
		MaxUploadMB:  mb,
		LogFile:      getenv("LOG_FILE", "logs/pricematch-service.log"),
		DBPath:       os.Getenv("DB_PATH"),
		Match:        opt,
	}, nil
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Опечатка в числовой переменной — ошибка старта, а не тихий дефолт:
// сервис со случайным портом или порогом хуже, чем упавший.
func getint(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: bad number %q", k, v)
	}
	return i, nil
}

func getfloat(k string, dst *float64) error {
	v := os.Getenv(k)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: bad number %q", k, v)
	}
	*dst = f
	return nil
}

func loadJSON(path string, dst any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
