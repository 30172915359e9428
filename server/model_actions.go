package server

import (
	"context"
	"encoding/gob"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/pitch/model"
)

func NewGameServer(newMatch func(r Reporter) (*Match, error)) *GameServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &GameServer{
		Sessions:      make([]*MatchSession, 0),
		MatchRequests: make(chan MatchRequest),
		Upgrader:      &websocket.Upgrader{},
		NewMatch:      newMatch,
		Timeout:       200 * time.Millisecond,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Stop ends the server loop and aborts every running match.
func (s *GameServer) Stop() {
	s.cancel()
}

func (s *GameServer) HandleHttpCall() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("HandleHttpCall - spectator connection received")

		mcas := make(chan MatchContextAwaiting, 1)
		select {
		case s.MatchRequests <- MatchRequest{MatchContextAwaiting: mcas}:
		case <-s.ctx.Done():
			log.Warn("HandleHttpCall server stopped")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		case <-time.After(s.Timeout):
			log.Warn("MatchRequests TIMEOUTED")
			w.WriteHeader(http.StatusRequestTimeout)
			return
		}

		var mca MatchContextAwaiting
		select {
		case mca = <-mcas:
			if mca.ResponseCode != GAME_READY {
				w.WriteHeader(mca.ResponseCode.ToHttp())
				return
			}
		case <-time.After(s.Timeout):
			log.Warnf("HandleHttpCall MatchContextAwaiting <- TIMEOUTED")
			w.WriteHeader(http.StatusRequestTimeout)
			return
		}

		con, err := s.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already answered the client
			log.Printf("HandleHttpCall websocket upgrade err %v", err)
			return
		}
		defer con.Close()
		con.SetPingHandler(func(message string) error {
			err := con.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(time.Second))
			if err == websocket.ErrCloseSent {
				return nil
			} else if e, ok := err.(net.Error); ok && e.Temporary() {
				return nil
			}
			return err
		})

		gameOver := make(chan struct{})
		select {
		case mca.Session.SpectatorConnectRequests <- SpectatorConnectRequest{Con: con, GameOver: gameOver}:
		case <-mca.Session.over:
			return
		case <-time.After(s.Timeout):
			log.Warn("HandleHttpCall SpectatorConnectRequests TIMEOUTED")
			return
		}

		log.Info("HandleHttpCall watching until game over")
		<-gameOver
	}
}

// Loop attaches spectators to the running match, starting a new one when none runs.
func (s *GameServer) Loop() {
	log.Printf("GameServer.Loop starting")
	for {
		select {
		case <-s.ctx.Done():
			log.Printf("GameServer.Loop stopped")
			return
		case req := <-s.MatchRequests:
			s.prune()
			var ms *MatchSession
			for _, candidate := range s.Sessions {
				if candidate.live() {
					ms = candidate
					break
				}
			}
			if ms == nil {
				var err error
				if ms, err = s.startSession(); err != nil {
					log.Errorf("GameServer.Loop cannot start match: %v", err)
					req.MatchContextAwaiting <- MatchContextAwaiting{ResponseCode: GAME_INVALIDE}
					continue
				}
			}
			req.MatchContextAwaiting <- MatchContextAwaiting{ResponseCode: GAME_READY, Session: ms}
		}
	}
}

func (s *GameServer) startSession() (*MatchSession, error) {
	ms := NewMatchSession()
	match, err := s.NewMatch(ms)
	if err != nil {
		return nil, err
	}
	ms.Match = match
	ms.State = GS_PLAY
	go ms.Loop()
	go func() {
		_, err := match.Run(s.ctx)
		ms.Done <- err
	}()
	s.Sessions = append(s.Sessions, ms)
	log.Infof("GameServer started match session #%d", len(s.Sessions))
	return ms, nil
}

func (s *GameServer) prune() {
	live := s.Sessions[:0]
	for _, ms := range s.Sessions {
		if ms.live() {
			live = append(live, ms)
		}
	}
	s.Sessions = live
}

func NewMatchSession() *MatchSession {
	return &MatchSession{
		State:                    GS_NEW,
		Spectators:               make([]*Spectator, 0),
		Reports:                  make(chan model.ServerMessage, 64),
		Errors:                   make(chan int),
		Done:                     make(chan error, 1),
		SpectatorConnectRequests: make(chan SpectatorConnectRequest),
		over:                     make(chan struct{}),
	}
}

func (ms *MatchSession) live() bool {
	select {
	case <-ms.over:
		return false
	default:
		return true
	}
}

// Setup, Round and Final make the session the Reporter of its match.
func (ms *MatchSession) Setup(s model.Setup) {
	ms.Reports <- model.ServerMessage{Setup: []model.Setup{s}}
}

func (ms *MatchSession) Round(r model.RoundReport) {
	ms.Reports <- model.ServerMessage{Rounds: []model.RoundReport{r}}
}

func (ms *MatchSession) Final(f model.FinalReport) {
	ms.Reports <- model.ServerMessage{Finals: []model.FinalReport{f}}
}

func (ms *MatchSession) Loop() {
	log.Info("MatchSession.Loop start")
	defer close(ms.over)
	for {
		select {
		case scr := <-ms.SpectatorConnectRequests:
			sp := ms.addSpectator(scr.Con, scr.GameOver)
			if ms.Opening != nil {
				sp.push(model.ServerMessage{Setup: []model.Setup{*ms.Opening}})
			}
			if scr.Reply != nil {
				scr.Reply <- sp
			}
		case id := <-ms.Errors:
			log.Warnf("MatchSession.Loop dropping spectator %d", id)
			ms.removeSpectator(id, SP_ERR)
		case mes := <-ms.Reports:
			if len(mes.Setup) > 0 {
				ms.Opening = &mes.Setup[0]
			}
			for _, sp := range ms.Spectators {
				sp.push(mes)
			}
		case err := <-ms.Done:
			// reports sent before Run returned are still buffered
			for drained := false; !drained; {
				select {
				case mes := <-ms.Reports:
					for _, sp := range ms.Spectators {
						sp.push(mes)
					}
				default:
					drained = true
				}
			}
			ms.State = GS_OVER
			if err != nil {
				log.Warnf("MatchSession.Loop match aborted: %v", err)
				ms.State = GS_ERR
			}
			for len(ms.Spectators) > 0 {
				ms.removeSpectator(ms.Spectators[0].Id, SP_OVER)
			}
			log.Infof("MatchSession.Loop end %s", ms.State.Name())
			return
		}
	}
}

func (ms *MatchSession) addSpectator(conn Conn, gameOver chan struct{}) *Spectator {
	ms.nextId++
	sp := &Spectator{
		State:          SP_WATCH,
		Id:             ms.nextId,
		Session:        ms,
		Conn:           conn,
		GameOver:       gameOver,
		MessagesToSend: make(chan model.ServerMessage, 32),
	}
	go sp.LoopChannelRead()
	go sp.LoopChannelWrite()
	ms.Spectators = append(ms.Spectators, sp)
	log.Printf("MatchSession.addSpectator %d", sp.Id)
	return sp
}

func (ms *MatchSession) removeSpectator(id int, state SpectatorState) {
	for i, sp := range ms.Spectators {
		if sp.Id == id {
			sp.State = state
			close(sp.MessagesToSend)
			ms.Spectators = append(ms.Spectators[:i], ms.Spectators[i+1:]...)
			return
		}
	}
}

// push never blocks the session; a spectator that cannot keep up misses messages.
func (sp *Spectator) push(mes model.ServerMessage) {
	select {
	case sp.MessagesToSend <- mes:
	default:
		log.Warnf("Spectator %d MessagesToSend FULL, dropping message", sp.Id)
	}
}

func (sp *Spectator) fail() {
	select {
	case sp.Session.Errors <- sp.Id:
	case <-sp.Session.over:
	}
}

// LoopChannelRead only watches the connection; spectators have nothing to say.
func (sp *Spectator) LoopChannelRead() {
	for {
		if _, _, err := sp.Conn.NextReader(); err != nil {
			log.Printf("Spectator.LoopChannelRead %d ended: %v", sp.Id, err)
			sp.fail()
			return
		}
	}
}

// LoopChannelWrite sends until the session closes MessagesToSend, then signals GameOver.
func (sp *Spectator) LoopChannelWrite() {
	defer close(sp.GameOver)
	for mes := range sp.MessagesToSend {
		w, err := sp.Conn.NextWriter(websocket.BinaryMessage)
		if err != nil {
			log.Warnf("Spectator.LoopChannelWrite cant get writer %v", err)
			sp.fail()
			return
		}
		if err := gob.NewEncoder(w).Encode(mes); err != nil {
			log.Warnf("Spectator.LoopChannelWrite cant encode %v", err)
			sp.fail()
			return
		}
		if err := w.Close(); err != nil {
			log.Warnf("Spectator.LoopChannelWrite cant flush %v", err)
			sp.fail()
			return
		}
		sp.DebugOutMessages++
		sp.DebugLastMessage = time.Now()
	}
}
