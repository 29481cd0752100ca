package game

import (
	"time"

	"vive-gamer/internal/config"
)

type BattleSettings struct {
	RoundSeconds int
	AIFirst      time.Duration
	AIInterval   time.Duration
	InkBudget    float64
	Intermission time.Duration
}

type OjamaSettings struct {
	Rounds       int
	RoundSeconds int
	Countdown    int
	SplatCap     int
	HintFraction float64
	Intermission time.Duration
}

type SketchSettings struct {
	Rounds            int
	ShowTime          time.Duration
	DrawSeconds       int
	CompositeInterval time.Duration
	RevealTime        time.Duration
	VoteSeconds       int
	Intermission      time.Duration
}

type TeleportSettings struct {
	PromptSeconds   int
	DescribeSeconds int
	GeneratePause   time.Duration
	Parallelism     int
}

type Settings struct {
	Battle   BattleSettings
	Ojama    OjamaSettings
	Sketch   SketchSettings
	Teleport TeleportSettings
}

func SettingsFromConfig(cfg config.Config) Settings {
	return Settings{
		Battle: BattleSettings{
			RoundSeconds: cfg.BattleRoundSeconds,
			AIFirst:      config.Seconds(cfg.BattleAIFirstSeconds),
			AIInterval:   config.Seconds(cfg.BattleAIIntervalSeconds),
			InkBudget:    float64(cfg.BattleInkBudget),
			Intermission: config.Seconds(cfg.BattleIntermissionSeconds),
		},
		Ojama: OjamaSettings{
			Rounds:       cfg.OjamaRounds,
			RoundSeconds: cfg.OjamaRoundSeconds,
			Countdown:    cfg.OjamaCountdown,
			SplatCap:     cfg.OjamaSplatCap,
			HintFraction: cfg.OjamaHintFraction,
			Intermission: 3 * time.Second,
		},
		Sketch: SketchSettings{
			Rounds:            cfg.SketchRounds,
			ShowTime:          config.Seconds(cfg.SketchShowSeconds),
			DrawSeconds:       cfg.SketchDrawSeconds,
			CompositeInterval: config.Seconds(cfg.SketchCompositeSeconds),
			RevealTime:        config.Seconds(cfg.SketchRevealSeconds),
			VoteSeconds:       cfg.SketchVoteSeconds,
			Intermission:      4 * time.Second,
		},
		Teleport: TeleportSettings{
			PromptSeconds:   cfg.TeleportPromptSeconds,
			DescribeSeconds: cfg.TeleportDescribeSeconds,
			GeneratePause:   config.Seconds(cfg.TeleportGenerateSeconds),
			Parallelism:     4,
		},
	}
}

// DefaultSettings mirrors config.Default.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.Default())
}
