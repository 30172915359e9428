package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/pitch/model"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Seed       int64  `env:"MATCH_SEED" envDefault:"0"`
	Rounds     int    `env:"MATCH_ROUNDS" envDefault:"200"`
	TeamSize   int    `env:"TEAM_SIZE" envDefault:"11"`
	LineupFile string `env:"LINEUP_FILE"`

	Length   int `env:"FIELD_LENGTH" envDefault:"128"`
	Width    int `env:"FIELD_WIDTH" envDefault:"96"`
	Cols     int `env:"GRID_COLS" envDefault:"4"`
	Rows     int `env:"GRID_ROWS" envDefault:"3"`
	GoalLow  int `env:"GOAL_LOW" envDefault:"43"`
	GoalHigh int `env:"GOAL_HIGH" envDefault:"51"`
	MaxSpeed int `env:"MAX_SPEED" envDefault:"10"`
	BidMax   int `env:"BID_MAX" envDefault:"9"`
}

// InitConfig loads a .env file into the environment when one is present.
func InitConfig(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Debugf("no .env loaded: %v", err)
		return
	}
	log.Println("Successfully loaded environment variables")
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TeamSize <= 0 {
		return cfg, fmt.Errorf("TEAM_SIZE must be positive, got %d", cfg.TeamSize)
	}
	return cfg, nil
}

func (c Config) Field() (model.Field, error) {
	f := model.Field{
		Length:   c.Length,
		Width:    c.Width,
		Cols:     c.Cols,
		Rows:     c.Rows,
		GoalLow:  c.GoalLow,
		GoalHigh: c.GoalHigh,
		MaxSpeed: c.MaxSpeed,
		BidMax:   c.BidMax,
	}
	return f, f.Validate()
}

// ApplyLogLevel sets the logrus level named by LOG_LEVEL.
func (c Config) ApplyLogLevel() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}
