package server

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/pitch/comm"
	"github.com/zucenko/pitch/model"
)

func (p *participant) isOwner() bool {
	return p.role == model.ROLE_OWNER
}

// isPrimary is the owner that aggregates reports.
func (p *participant) isPrimary() bool {
	return p.rank == 0
}

func (p *participant) logger() *log.Entry {
	return log.WithFields(log.Fields{"rank": p.rank, "segment": p.segment})
}

// play builds the static groups and runs both halves.
func (p *participant) play(ctx context.Context) (err error) {
	defer p.release()

	fieldsColor := comm.UNDEFINED
	if p.isOwner() {
		fieldsColor = 0
	}
	if p.fields, err = comm.Split(ctx, p.world, fieldsColor, p.rank); err != nil {
		return fmt.Errorf("rank %d: all segments group: %w", p.rank, err)
	}

	reportingColor := comm.UNDEFINED
	if p.isPrimary() || !p.isOwner() {
		reportingColor = 0
	}
	if p.reporting, err = comm.Split(ctx, p.world, reportingColor, p.rank); err != nil {
		return fmt.Errorf("rank %d: reporting group: %w", p.rank, err)
	}

	for half := 0; half < HALVES; half++ {
		if half > 0 {
			p.goals = p.goals.Swap()
		}
		if err := p.playHalf(ctx, half); err != nil {
			return err
		}
	}

	if p.isPrimary() {
		p.reporter.Final(model.FinalReport{Score: p.score})
	}
	return nil
}

func (p *participant) release() {
	for _, c := range []*comm.Comm{p.seg, p.reporting, p.fields} {
		if c != nil {
			c.Free()
		}
	}
	p.seg, p.reporting, p.fields = nil, nil, nil
}

func (p *participant) playHalf(ctx context.Context, half int) error {
	if p.player != nil {
		p.player.StartRound()
	}
	if err := p.regroup(ctx); err != nil {
		return err
	}
	for round := 0; round < p.rounds; round++ {
		if err := p.playRound(ctx, half, round); err != nil {
			return fmt.Errorf("rank %d half %d round %d: %w", p.rank, half, round, err)
		}
	}
	return nil
}

// locate is the segment this participant belongs to right now.
func (p *participant) locate() (int, error) {
	if p.isOwner() {
		return p.rank, nil
	}
	return p.field.Locate(p.rank, p.player.Final)
}

// regroup releases the segment group and rebuilds it from current positions.
// It is collective over the whole population.
func (p *participant) regroup(ctx context.Context) error {
	segment, err := p.locate()
	if err != nil {
		return err
	}
	if p.seg != nil {
		p.seg.Free()
	}
	if p.seg, err = comm.Split(ctx, p.world, segment, p.rank); err != nil {
		return fmt.Errorf("rank %d: segment group: %w", p.rank, err)
	}
	if p.segment != segment {
		p.logger().Debugf("participant.regroup moved to segment %d", segment)
	}
	p.segment = segment
	return nil
}

func (p *participant) playRound(ctx context.Context, half, round int) error {
	if p.player != nil {
		p.player.StartRound()
	}

	// distribute: every owner publishes the ball to its segment
	ball, err := comm.Broadcast(ctx, p.seg, 0, p.ball)
	if err != nil {
		return err
	}
	p.ball = ball
	ballSegment, err := p.field.Locate(p.rank, p.ball)
	if err != nil {
		return err
	}

	changed := false
	if p.player != nil {
		if changed, err = p.decide(ballSegment); err != nil {
			return err
		}
	}

	regrouped, err := comm.AnyTrue(ctx, p.world, changed)
	if err != nil {
		return err
	}
	if regrouped {
		if err := p.regroup(ctx); err != nil {
			return err
		}
	}

	if p.segment == ballSegment {
		if err := p.arbitrate(ctx); err != nil {
			return err
		}
	}

	goal, scorer := model.NO_GOAL, model.TEAM_NONE
	if p.isOwner() {
		if goal, scorer, err = p.fanOut(ctx, ballSegment); err != nil {
			return err
		}
	}

	if p.reporting != nil {
		if err := p.report(ctx, half, round, regrouped, changed, goal, scorer); err != nil {
			return err
		}
	}

	return comm.Barrier(ctx, p.world)
}

// decide moves the player and tells whether it left its segment group.
func (p *participant) decide(ballSegment int) (bool, error) {
	home, err := p.field.RandomIn(p.player.Home, p.rng)
	if err != nil {
		return false, err
	}
	p.player.Decide(p.ball, p.segment == ballSegment, home, p.field)
	segment, err := p.field.Locate(p.rank, p.player.Final)
	if err != nil {
		return false, err
	}
	return segment != p.segment, nil
}

// fanOut hands the ball from the owner holding it to every owner and settles goals.
func (p *participant) fanOut(ctx context.Context, ballSegment int) (model.GoalLine, model.Team, error) {
	ball, err := comm.Broadcast(ctx, p.fields, ballSegment, p.ball)
	if err != nil {
		return model.NO_GOAL, model.TEAM_NONE, err
	}
	if !p.field.InBounds(ball) {
		return model.NO_GOAL, model.TEAM_NONE, &model.TopologyError{Id: p.rank, Position: ball}
	}
	p.ball = ball

	goal := p.field.GoalAt(p.ball)
	if goal == model.NO_GOAL {
		return goal, model.TEAM_NONE, nil
	}
	scorer := p.score.Record(goal, p.goals)
	p.ball = p.field.Center()
	if p.isPrimary() {
		p.logger().WithField("scorer", scorer).Infof("GOAL score A %d:%d B", p.score.A, p.score.B)
	}
	return goal, scorer, nil
}

// report gathers every player's state at the primary owner.
func (p *participant) report(ctx context.Context, half, round int, regrouped, changed bool,
	goal model.GoalLine, scorer model.Team) error {
	state := model.PlayerState{Id: p.rank, Segment: p.segment, Challenge: model.NO_BID}
	if p.player != nil {
		state = p.player.State(p.segment, changed)
	}
	states, err := comm.Gather(ctx, p.reporting, 0, state)
	if err != nil || p.reporting.Rank() != 0 {
		return err
	}

	players := states[1:]
	segments, err := p.field.Membership(players)
	if err != nil {
		return err
	}
	p.reporter.Round(model.RoundReport{
		Half:      half,
		Round:     round,
		Ball:      p.ball,
		Score:     p.score,
		Regrouped: regrouped,
		Goal:      goal,
		Scorer:    scorer,
		Players:   players,
		Segments:  segments,
	})
	return nil
}
