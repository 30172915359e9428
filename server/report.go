package server

import (
	"fmt"
	"io"
	"sync"

	"github.com/zucenko/pitch/model"
)

var Discard Reporter = discard{}

type discard struct{}

func (discard) Setup(model.Setup)       {}
func (discard) Round(model.RoundReport) {}
func (discard) Final(model.FinalReport) {}

// TextReporter writes the line oriented match log.
type TextReporter struct {
	W       io.Writer
	Players bool
}

func (t *TextReporter) Setup(s model.Setup) {
	fmt.Fprintf(t.W, "Kick-off: %d players, %d segments, %d rounds per half\n",
		len(s.Players), s.Field.Segments(), s.Rounds)
}

func (t *TextReporter) Round(r model.RoundReport) {
	fmt.Fprintf(t.W, "Half: %d Round: %d\n", r.Half, r.Round)
	fmt.Fprintf(t.W, "Ball: %d %d\n", r.Ball.X, r.Ball.Y)
	if r.Goal != model.NO_GOAL {
		fmt.Fprintf(t.W, "Goal for %s! A %d:%d B\n", teamName(r.Scorer), r.Score.A, r.Score.B)
	}
	if !t.Players {
		return
	}
	for _, p := range r.Players {
		fmt.Fprintf(t.W, "id: %d; team: %s; initial: %d, %d; final: %d %d; reached: %d; kicked: %d; challenge: %d;\n",
			p.Id, teamName(p.Team), p.Initial.X, p.Initial.Y, p.Final.X, p.Final.Y,
			flag(p.Reached), flag(p.Kicked), p.Challenge)
	}
}

func (t *TextReporter) Final(f model.FinalReport) {
	fmt.Fprintf(t.W, "Final score: A %d:%d B\n", f.Score.A, f.Score.B)
}

// Tee hands every summary to each reporter in turn.
type Tee []Reporter

func (t Tee) Setup(s model.Setup) {
	for _, r := range t {
		r.Setup(s)
	}
}

func (t Tee) Round(rr model.RoundReport) {
	for _, r := range t {
		r.Round(rr)
	}
}

func (t Tee) Final(f model.FinalReport) {
	for _, r := range t {
		r.Final(f)
	}
}

// Recorder keeps every summary in memory.
type Recorder struct {
	mu     sync.Mutex
	setup  model.Setup
	rounds []model.RoundReport
	final  *model.FinalReport
}

func (r *Recorder) Setup(s model.Setup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setup = s
}

func (r *Recorder) Round(rr model.RoundReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds = append(r.rounds, rr)
}

func (r *Recorder) Final(f model.FinalReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.final = &f
}

func (r *Recorder) Rounds() []model.RoundReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.RoundReport(nil), r.rounds...)
}

func (r *Recorder) Snapshot() (model.Setup, *model.FinalReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setup, r.final
}

func teamName(t model.Team) string {
	switch t {
	case model.TEAM_A:
		return "A"
	case model.TEAM_B:
		return "B"
	}
	return "-"
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
