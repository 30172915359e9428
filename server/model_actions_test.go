package server

import (
	"bytes"
	"encoding/gob"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/pitch/model"
)

type fakeConn struct {
	sendCh chan []byte
	closed chan struct{}
	broken bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{sendCh: make(chan []byte, 64), closed: make(chan struct{})}
}

func (f *fakeConn) NextReader() (int, io.Reader, error) {
	<-f.closed
	return 0, nil, errors.New("closed")
}

func (f *fakeConn) NextWriter(int) (io.WriteCloser, error) {
	if f.broken {
		return nil, errors.New("broken pipe")
	}
	return &fakeWriter{conn: f}, nil
}

type fakeWriter struct {
	conn *fakeConn
	buf  bytes.Buffer
}

func (w *fakeWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *fakeWriter) Close() error {
	w.conn.sendCh <- w.buf.Bytes()
	return nil
}

func decode(t *testing.T, b []byte) model.ServerMessage {
	t.Helper()
	var mes model.ServerMessage
	require.NoError(t, gob.NewDecoder(bytes.NewReader(b)).Decode(&mes))
	return mes
}

func receive(t *testing.T, ch chan []byte) model.ServerMessage {
	t.Helper()
	select {
	case b := <-ch:
		return decode(t, b)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a message")
	}
	return model.ServerMessage{}
}

func TestMatchSessionStreamsToSpectators(t *testing.T) {
	ms := NewMatchSession()
	go ms.Loop()

	fc := newFakeConn()
	defer close(fc.closed)
	gameOver := make(chan struct{})
	reply := make(chan *Spectator, 1)
	ms.SpectatorConnectRequests <- SpectatorConnectRequest{Con: fc, GameOver: gameOver, Reply: reply}
	sp := <-reply
	assert.Equal(t, 1, sp.Id)

	ms.Setup(model.Setup{Field: model.DefaultField(), Rounds: 3})
	ms.Round(model.RoundReport{Round: 0, Ball: model.Position{X: 56, Y: 48}})
	ms.Final(model.FinalReport{Score: model.Score{A: 2, B: 1}})
	ms.Done <- nil

	setup := receive(t, fc.sendCh)
	require.Len(t, setup.Setup, 1)
	assert.Equal(t, 3, setup.Setup[0].Rounds)

	round := receive(t, fc.sendCh)
	require.Len(t, round.Rounds, 1)
	assert.Equal(t, model.Position{X: 56, Y: 48}, round.Rounds[0].Ball)

	final := receive(t, fc.sendCh)
	require.Len(t, final.Finals, 1)
	assert.Equal(t, model.Score{A: 2, B: 1}, final.Finals[0].Score)

	select {
	case <-gameOver:
	case <-time.After(2 * time.Second):
		t.Fatal("spectator never saw game over")
	}
	<-ms.over
	assert.Equal(t, GS_OVER, ms.State)
}

func TestLateSpectatorGetsSetup(t *testing.T) {
	ms := NewMatchSession()
	go ms.Loop()
	ms.Setup(model.Setup{Rounds: 9})

	fc := newFakeConn()
	defer close(fc.closed)
	reply := make(chan *Spectator, 1)
	ms.SpectatorConnectRequests <- SpectatorConnectRequest{Con: fc, GameOver: make(chan struct{}), Reply: reply}
	<-reply

	mes := receive(t, fc.sendCh)
	require.Len(t, mes.Setup, 1)
	assert.Equal(t, 9, mes.Setup[0].Rounds)
	ms.Done <- nil
}

func TestBrokenSpectatorIsDropped(t *testing.T) {
	ms := NewMatchSession()
	go ms.Loop()

	fc := newFakeConn()
	fc.broken = true
	defer close(fc.closed)
	gameOver := make(chan struct{})
	reply := make(chan *Spectator, 1)
	ms.SpectatorConnectRequests <- SpectatorConnectRequest{Con: fc, GameOver: gameOver, Reply: reply}
	<-reply

	ms.Round(model.RoundReport{})
	select {
	case <-gameOver:
	case <-time.After(2 * time.Second):
		t.Fatal("broken spectator kept running")
	}
	ms.Done <- errors.New("aborted")
	<-ms.over
	assert.Equal(t, GS_ERR, ms.State)
}

// gate holds the match at its first round until released.
type gate struct {
	release chan struct{}
	once    bool
}

func (g *gate) Setup(model.Setup) {}

func (g *gate) Round(model.RoundReport) {
	if !g.once {
		g.once = true
		<-g.release
	}
}

func (g *gate) Final(model.FinalReport) {}

func TestGameServerWebsocket(t *testing.T) {
	g := &gate{release: make(chan struct{})}
	s := NewGameServer(func(r Reporter) (*Match, error) {
		return NewMatch(model.DefaultField(), 3, model.DefaultLineup(11), 5, Tee{g, r})
	})
	s.Timeout = 2 * time.Second
	go s.Loop()
	defer s.Stop()

	ts := httptest.NewServer(s.HandleHttpCall())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	con, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer con.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	read := func() model.ServerMessage {
		require.NoError(t, con.SetReadDeadline(time.Now().Add(5*time.Second)))
		typ, r, err := con.NextReader()
		require.NoError(t, err)
		require.Equal(t, websocket.BinaryMessage, typ)
		var mes model.ServerMessage
		require.NoError(t, gob.NewDecoder(r).Decode(&mes))
		return mes
	}

	first := read()
	require.Len(t, first.Setup, 1)
	assert.Len(t, first.Setup[0].Players, 22)
	close(g.release)

	rounds := 0
	for {
		mes := read()
		rounds += len(mes.Rounds)
		if len(mes.Finals) > 0 {
			break
		}
	}
	assert.Equal(t, 6, rounds)
}

func TestResponseCodeToHttp(t *testing.T) {
	assert.Equal(t, http.StatusOK, GAME_READY.ToHttp())
	assert.Equal(t, http.StatusBadRequest, GAME_INVALIDE.ToHttp())
	assert.Equal(t, http.StatusInternalServerError, ResponseCode(7).ToHttp())
	assert.Equal(t, "GS_PLAY", GS_PLAY.Name())
	assert.Equal(t, "MS_OVER", MS_OVER.Name())
	assert.Equal(t, "WATCH", SP_WATCH.Name())
}

func TestGameServerRejectsBadMatch(t *testing.T) {
	s := NewGameServer(func(r Reporter) (*Match, error) {
		return NewMatch(model.DefaultField(), 0, model.DefaultLineup(11), 5, r)
	})
	go s.Loop()
	defer s.Stop()

	ts := httptest.NewServer(s.HandleHttpCall())
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStoppedServerRefusesSpectators(t *testing.T) {
	s := NewGameServer(func(r Reporter) (*Match, error) {
		t.Error("no match should start on a stopped server")
		return nil, nil
	})
	s.Stop()

	ts := httptest.NewServer(s.HandleHttpCall())
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
