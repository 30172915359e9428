package server

import (
	"context"
	"fmt"

	"github.com/zucenko/pitch/comm"
	"github.com/zucenko/pitch/model"
)

// selectWinner returns the group rank of the strictly highest bid, the first
// one seen on ties. Bids of zero or less never win.
func selectWinner(bids []int) int {
	winner, top := model.NO_WINNER, 0
	for rank, bid := range bids {
		if bid > top {
			top = bid
			winner = rank
		}
	}
	return winner
}

// arbitrate runs in the segment holding the ball. Players standing on the ball
// bid, the owner picks the winner and the winner alone kicks. The new ball is
// then broadcast by the winner so the whole segment agrees on it.
func (p *participant) arbitrate(ctx context.Context) error {
	bid := model.NO_BID
	if p.player != nil && p.player.Final == p.ball {
		bid = p.player.Bid(p.rng, p.field)
	}

	bids, err := comm.Gather(ctx, p.seg, 0, bid)
	if err != nil {
		return err
	}
	winner := model.NO_WINNER
	if p.seg.Rank() == 0 {
		winner = selectWinner(bids)
	}
	if winner, err = comm.Broadcast(ctx, p.seg, 0, winner); err != nil {
		return err
	}
	if winner == model.NO_WINNER {
		return nil
	}

	if p.seg.Rank() == winner {
		if p.player == nil {
			return fmt.Errorf("%w: owner %d won its own arbitration", comm.ErrCoordination, p.rank)
		}
		p.ball = p.player.Aim(p.goals.Attacking(p.player.Team), p.field)
		p.player.Kicked = true
		p.logger().Debugf("participant.arbitrate won with %d, kicked to %v", bid, p.ball)
	}
	ball, err := comm.Broadcast(ctx, p.seg, winner, p.ball)
	if err != nil {
		return err
	}
	p.ball = ball
	return nil
}
