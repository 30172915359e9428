package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/pitch/config"
	"github.com/zucenko/pitch/model"
	"github.com/zucenko/pitch/server"
)

func main() {
	players := flag.Bool("players", false, "print every player's state each round")
	flag.Parse()

	config.InitConfig()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}
	if err := cfg.ApplyLogLevel(); err != nil {
		log.Fatalln(err)
	}
	field, err := cfg.Field()
	if err != nil {
		log.Fatalln(err)
	}
	lineup := model.DefaultLineup(cfg.TeamSize)
	if cfg.LineupFile != "" {
		if lineup, err = server.LoadLineup(cfg.LineupFile); err != nil {
			log.Fatalln(err)
		}
	}

	reporter := &server.TextReporter{W: os.Stdout, Players: *players}
	match, err := server.NewMatch(field, cfg.Rounds, lineup, cfg.Seed, reporter)
	if err != nil {
		log.Fatalln(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if _, err := match.Run(ctx); err != nil {
		log.Fatalln(err)
	}
}
