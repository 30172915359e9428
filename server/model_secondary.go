package server

import (
	"fmt"
	"net/http"
)

// ResponseCode is the Loop's answer to a spectator asking for a match.
type ResponseCode int

const (
	GAME_READY ResponseCode = iota
	GAME_INVALIDE
)

func (h ResponseCode) ToHttp() int {
	switch h {
	case GAME_READY:
		return http.StatusOK
	case GAME_INVALIDE:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (ms MatchState) Name() string {
	switch ms {
	case MS_NEW:
		return "MS_NEW"
	case MS_PLAY:
		return "MS_PLAY"
	case MS_ERR:
		return "MS_ERR"
	case MS_OVER:
		return "MS_OVER"
	default:
		return fmt.Sprintf("n/a:%d", ms)
	}
}

func (gss GameSessionState) Name() string {
	switch gss {
	case GS_NEW:
		return "GS_NEW"
	case GS_PLAY:
		return "GS_PLAY"
	case GS_ERR:
		return "GS_ERR"
	case GS_OVER:
		return "GS_OVER"
	default:
		return fmt.Sprintf("n/a:%d", gss)
	}
}

func (ss SpectatorState) Name() string {
	switch ss {
	case SP_NEW:
		return "NEW"
	case SP_WATCH:
		return "WATCH"
	case SP_OVER:
		return "OVER"
	case SP_ERR:
		return "ERR"
	default:
		return "N/A"
	}
}

type MatchContextAwaiting struct {
	ResponseCode ResponseCode
	Session      *MatchSession
}

type MatchRequest struct {
	MatchContextAwaiting chan MatchContextAwaiting
}

type SpectatorConnectRequest struct {
	Con      Conn
	GameOver chan struct{}
	Reply    chan *Spectator
}
