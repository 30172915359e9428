package server

import (
	"context"
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/pitch/comm"
	"github.com/zucenko/pitch/model"
	"golang.org/x/sync/errgroup"
)

const HALVES = 2

func NewMatch(field model.Field, rounds int, lineup model.Lineup, seed int64, reporter Reporter) (*Match, error) {
	if err := field.Validate(); err != nil {
		return nil, err
	}
	if rounds <= 0 {
		return nil, fmt.Errorf("match needs at least one round per half, got %d", rounds)
	}
	if err := lineup.Validate(field); err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = Discard
	}
	return &Match{
		State:    MS_NEW,
		Field:    field,
		Rounds:   rounds,
		Lineup:   lineup,
		Seed:     seed,
		Reporter: reporter,
	}, nil
}

// Population is the number of participants: one owner per segment plus the players.
func (m *Match) Population() int {
	return m.Field.Segments() + len(m.Lineup)
}

// Run plays both halves and returns the final score. The first participant
// failure cancels everyone else and is returned.
func (m *Match) Run(ctx context.Context) (model.Score, error) {
	m.State = MS_PLAY
	participants, err := m.cast()
	if err != nil {
		m.State = MS_ERR
		return model.Score{}, err
	}
	m.Reporter.Setup(m.setup(participants))
	return m.kickOff(ctx, participants)
}

// kickOff runs every participant on its own goroutine until the match ends or one fails.
func (m *Match) kickOff(ctx context.Context, participants []*participant) (model.Score, error) {
	log.WithFields(log.Fields{
		"population": len(participants),
		"segments":   m.Field.Segments(),
		"rounds":     m.Rounds,
		"seed":       m.Seed,
	}).Info("Match.Run kick-off")

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range participants {
		p := p
		g.Go(func() error {
			return p.play(ctx)
		})
	}
	if err := g.Wait(); err != nil {
		m.State = MS_ERR
		log.Errorf("Match.Run aborted: %v", err)
		return model.Score{}, err
	}
	m.State = MS_OVER
	score := participants[0].score
	log.Infof("Match.Run final score A %d:%d B", score.A, score.B)
	return score, nil
}

// cast creates every participant: owners take ranks 0..segments-1, then team A, then team B.
func (m *Match) cast() ([]*participant, error) {
	world := comm.NewWorld(m.Population())
	segments := m.Field.Segments()
	ps := make([]*participant, 0, len(world))

	newParticipant := func(rank int, role model.Role) *participant {
		return &participant{
			rank:     rank,
			role:     role,
			field:    m.Field,
			rounds:   m.Rounds,
			rng:      rand.New(rand.NewSource(m.Seed + int64(rank))),
			reporter: m.Reporter,
			segment:  rank,
			ball:     m.Field.Center(),
			goals:    model.FirstHalfGoals(),
			world:    world[rank],
		}
	}

	for rank := 0; rank < segments; rank++ {
		ps = append(ps, newParticipant(rank, model.ROLE_OWNER))
	}

	a, b := m.Lineup.Split()
	sides := []struct {
		role    model.Role
		team    model.Team
		entries []model.Entry
	}{
		{model.ROLE_TEAM_A, model.TEAM_A, a},
		{model.ROLE_TEAM_B, model.TEAM_B, b},
	}
	for _, side := range sides {
		for _, e := range side.entries {
			rank := len(ps)
			p := newParticipant(rank, side.role)
			p.player = model.NewPlayer(rank, side.team, rank%segments, e.Attributes)
			start, err := p.startPosition(e)
			if err != nil {
				return nil, err
			}
			p.player.Place(start)
			if p.segment, err = m.Field.Locate(rank, start); err != nil {
				return nil, err
			}
			ps = append(ps, p)
		}
	}
	return ps, nil
}

func (p *participant) startPosition(e model.Entry) (model.Position, error) {
	if e.Start != nil {
		return *e.Start, nil
	}
	return p.field.RandomIn(p.player.Home, p.rng)
}

func (m *Match) setup(ps []*participant) model.Setup {
	s := model.Setup{Field: m.Field, Rounds: m.Rounds}
	for _, p := range ps {
		if p.player != nil {
			s.Players = append(s.Players, p.player.State(p.segment, false))
		}
	}
	return s
}
