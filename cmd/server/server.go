package main

import (
	"net/http"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/pitch/config"
	"github.com/zucenko/pitch/model"
	"github.com/zucenko/pitch/server"
)

type Server struct {
	router     *way.Router
	GameServer *server.GameServer
}

func main() {
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

	s := Server{
		GameServer: server.NewGameServer(func(r server.Reporter) (*server.Match, error) {
			return server.NewMatch(field, cfg.Rounds, lineup, cfg.Seed, r)
		}),
	}
	go s.GameServer.Loop()
	s.routes()
	log.Printf("Listening on port %s", cfg.Port)
	log.Fatalln(http.ListenAndServe(":"+cfg.Port, s.router))
}
