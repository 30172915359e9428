package server

import (
	"context"
	"io"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zucenko/pitch/comm"
	"github.com/zucenko/pitch/model"
)

type MatchState int

const (
	MS_NEW MatchState = iota
	MS_PLAY
	MS_ERR
	MS_OVER
)

// Match is one simulated game: two halves played by a fixed population of
// segment owners and players, all running on their own goroutine.
type Match struct {
	State    MatchState
	Field    model.Field
	Rounds   int
	Lineup   model.Lineup
	Seed     int64
	Reporter Reporter
}

// Reporter receives the match summaries. All calls come from the goroutine of
// the primary segment owner, in order.
type Reporter interface {
	Setup(model.Setup)
	Round(model.RoundReport)
	Final(model.FinalReport)
}

// participant is one member of the population. Owners have no player.
type participant struct {
	rank     int
	role     model.Role
	field    model.Field
	rounds   int
	rng      model.Rand
	reporter Reporter

	player  *model.Player
	segment int
	ball    model.Position
	goals   model.Goals
	score   model.Score

	world     *comm.Comm
	fields    *comm.Comm
	reporting *comm.Comm
	seg       *comm.Comm
}

type GameServer struct {
	Sessions      []*MatchSession
	MatchRequests chan MatchRequest
	Upgrader      *websocket.Upgrader
	NewMatch      func(r Reporter) (*Match, error)
	Timeout       time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

type GameSessionState int

const (
	GS_NEW GameSessionState = iota
	GS_PLAY
	GS_ERR
	GS_OVER
)

type MatchSession struct {
	State      GameSessionState
	Match      *Match
	Spectators []*Spectator
	Opening    *model.Setup

	Reports                  chan model.ServerMessage
	Errors                   chan int
	Done                     chan error
	SpectatorConnectRequests chan SpectatorConnectRequest

	nextId int
	over   chan struct{}
}

type SpectatorState int

const (
	SP_NEW SpectatorState = iota + 1
	SP_WATCH
	SP_OVER
	SP_ERR
)

// Conn is the part of *websocket.Conn a spectator needs.
type Conn interface {
	NextReader() (messageType int, r io.Reader, err error)
	NextWriter(messageType int) (io.WriteCloser, error)
}

type Spectator struct {
	State   SpectatorState
	Id      int
	Session *MatchSession
	Conn    Conn

	// closed by the write loop when it stops
	GameOver chan struct{}
	// closed by the session when it lets the spectator go
	MessagesToSend chan model.ServerMessage

	DebugOutMessages int
	DebugLastMessage time.Time
	DebugPings       int
}
