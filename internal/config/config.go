package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	LogLevel    string
	CORSOrigins []string

	DatabaseURL              string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int

	BattleRoundSeconds        int
	BattleAIFirstSeconds      int
	BattleAIIntervalSeconds   int
	BattleInkBudget           int
	BattleIntermissionSeconds int

	OjamaRounds       int
	OjamaRoundSeconds int
	OjamaCountdown    int
	OjamaSplatCap     int
	OjamaHintFraction float64

	SketchRounds           int
	SketchShowSeconds      int
	SketchDrawSeconds      int
	SketchCompositeSeconds int
	SketchRevealSeconds    int
	SketchVoteSeconds      int

	TeleportPromptSeconds   int
	TeleportDescribeSeconds int
	TeleportGenerateSeconds int

	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIVisionModel string
	OpenAIImageModel  string
	ImageCacheKeys    int
	ImageCacheReuse   float64

	WSEventsPerSecond float64
	WSEventBurst      int
}

func Default() Config {
	return Config{
		Port:                      "8080",
		LogLevel:                  "info",
		DBMaxOpenConns:            10,
		DBMaxIdleConns:            10,
		DBConnMaxLifetimeSeconds:  300,
		BattleRoundSeconds:        60,
		BattleAIFirstSeconds:      5,
		BattleAIIntervalSeconds:   8,
		BattleInkBudget:           15000,
		BattleIntermissionSeconds: 4,
		OjamaRounds:               5,
		OjamaRoundSeconds:         20,
		OjamaCountdown:            3,
		OjamaSplatCap:             5,
		OjamaHintFraction:         0.6,
		SketchRounds:              3,
		SketchShowSeconds:         3,
		SketchDrawSeconds:         45,
		SketchCompositeSeconds:    15,
		SketchRevealSeconds:       5,
		SketchVoteSeconds:         30,
		TeleportPromptSeconds:     30,
		TeleportDescribeSeconds:   30,
		TeleportGenerateSeconds:   3,
		OpenAIBaseURL:             "https://api.openai.com/v1",
		OpenAIVisionModel:         "gpt-4o-mini",
		OpenAIImageModel:          "gpt-image-1",
		ImageCacheKeys:            100,
		ImageCacheReuse:           0.5,
		WSEventsPerSecond:         60,
		WSEventBurst:              120,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = strings.ToLower(raw)
	}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		cfg.CORSOrigins = splitList(raw)
	}
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	positiveInt("DB_MAX_OPEN_CONNS", &cfg.DBMaxOpenConns)
	positiveInt("DB_MAX_IDLE_CONNS", &cfg.DBMaxIdleConns)
	positiveInt("DB_CONN_MAX_LIFETIME_SECONDS", &cfg.DBConnMaxLifetimeSeconds)

	positiveInt("BATTLE_ROUND_SECONDS", &cfg.BattleRoundSeconds)
	positiveInt("BATTLE_AI_FIRST_SECONDS", &cfg.BattleAIFirstSeconds)
	positiveInt("BATTLE_AI_INTERVAL_SECONDS", &cfg.BattleAIIntervalSeconds)
	positiveInt("BATTLE_INK_BUDGET", &cfg.BattleInkBudget)
	positiveInt("BATTLE_INTERMISSION_SECONDS", &cfg.BattleIntermissionSeconds)

	positiveInt("OJAMA_ROUNDS", &cfg.OjamaRounds)
	positiveInt("OJAMA_ROUND_SECONDS", &cfg.OjamaRoundSeconds)
	positiveInt("OJAMA_COUNTDOWN", &cfg.OjamaCountdown)
	positiveInt("OJAMA_SPLAT_CAP", &cfg.OjamaSplatCap)
	if raw := os.Getenv("OJAMA_HINT_FRACTION"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value > 0 && value <= 1 {
			cfg.OjamaHintFraction = value
		}
	}

	positiveInt("SKETCH_ROUNDS", &cfg.SketchRounds)
	positiveInt("SKETCH_SHOW_SECONDS", &cfg.SketchShowSeconds)
	positiveInt("SKETCH_DRAW_SECONDS", &cfg.SketchDrawSeconds)
	positiveInt("SKETCH_COMPOSITE_SECONDS", &cfg.SketchCompositeSeconds)
	positiveInt("SKETCH_REVEAL_SECONDS", &cfg.SketchRevealSeconds)
	positiveInt("SKETCH_VOTE_SECONDS", &cfg.SketchVoteSeconds)

	positiveInt("TELEPORT_PROMPT_SECONDS", &cfg.TeleportPromptSeconds)
	positiveInt("TELEPORT_DESCRIBE_SECONDS", &cfg.TeleportDescribeSeconds)
	positiveInt("TELEPORT_GENERATE_SECONDS", &cfg.TeleportGenerateSeconds)

	if raw := os.Getenv("OPENAI_API_KEY"); raw != "" {
		cfg.OpenAIAPIKey = strings.TrimSpace(raw)
	}
	if raw := os.Getenv("OPENAI_BASE_URL"); raw != "" {
		cfg.OpenAIBaseURL = strings.TrimRight(raw, "/")
	}
	if raw := os.Getenv("OPENAI_VISION_MODEL"); raw != "" {
		cfg.OpenAIVisionModel = raw
	}
	if raw := os.Getenv("OPENAI_IMAGE_MODEL"); raw != "" {
		cfg.OpenAIImageModel = raw
	}
	positiveInt("IMAGE_CACHE_KEYS", &cfg.ImageCacheKeys)
	if raw := os.Getenv("IMAGE_CACHE_REUSE"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value >= 0 && value <= 1 {
			cfg.ImageCacheReuse = value
		}
	}
	if raw := os.Getenv("WS_EVENTS_PER_SECOND"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value > 0 {
			cfg.WSEventsPerSecond = value
		}
	}
	positiveInt("WS_EVENT_BURST", &cfg.WSEventBurst)
	return cfg
}

func positiveInt(name string, dest *int) {
	raw := os.Getenv(name)
	if raw == "" {
		return
	}
	if value, err := strconv.Atoi(raw); err == nil && value > 0 {
		*dest = value
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Seconds converts a seconds setting into a duration.
func Seconds(value int) time.Duration {
	return time.Duration(value) * time.Second
}
