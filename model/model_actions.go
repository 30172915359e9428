package model

// Rand is the source of randomness a participant draws from.
// *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

func NewPlayer(id int, team Team, home int, attrs Attributes) *Player {
	return &Player{
		Id:         id,
		Team:       team,
		Home:       home,
		Challenge:  NO_BID,
		Attributes: attrs,
	}
}

// Place puts the player at start, before the first round.
func (p *Player) Place(start Position) {
	p.Initial = start
	p.Final = start
}

// StartRound carries the last final position over and clears the round flags.
func (p *Player) StartRound() {
	p.Initial = p.Final
	p.Reached = false
	p.Kicked = false
	p.Challenge = NO_BID
}

func (p *Player) budget(f Field) int {
	if p.Speed < f.MaxSpeed {
		return p.Speed
	}
	return f.MaxSpeed
}

// TryToReach moves toward target, x first, never spending more than the speed budget.
func (p *Player) TryToReach(target Position, f Field) {
	left := p.budget(f)
	p.Final = p.Initial

	dx := clip(target.X-p.Initial.X, left)
	p.Final.X += dx
	left -= abs(dx)

	dy := clip(target.Y-p.Initial.Y, left)
	p.Final.Y += dy
}

// WithinReach tells whether the ball can be intercepted this round from the initial position.
func (p *Player) WithinReach(ball Position, f Field) bool {
	left := p.budget(f)
	dx := abs(p.Initial.X - ball.X)
	if dx >= left {
		return false
	}
	left -= dx
	dy := abs(p.Initial.Y - ball.Y)
	if dy >= left {
		return false
	}
	return true
}

func (p *Player) MoveTo(target Position) {
	p.Final = target
}

// Decide picks this round's movement. home is the fallback target.
func (p *Player) Decide(ball Position, inBallSegment bool, home Position, f Field) {
	switch {
	case inBallSegment:
		p.TryToReach(ball, f)
	case p.WithinReach(ball, f):
		p.MoveTo(ball)
	default:
		p.TryToReach(home, f)
	}
}

// RandomIn draws a position inside segment.
func (f Field) RandomIn(segment int, rng Rand) (Position, error) {
	min, max, err := f.Bounds(segment)
	if err != nil {
		return Position{}, err
	}
	return Position{
		X: min.X + rng.Intn(max.X-min.X+1),
		Y: min.Y + rng.Intn(max.Y-min.Y+1),
	}, nil
}

// Bid rolls a challenge for the ball and marks the player as having reached it.
func (p *Player) Bid(rng Rand, f Field) int {
	p.Reached = true
	p.Challenge = (rng.Intn(f.BidMax) + 1) * p.Dribbling
	return p.Challenge
}

// Aim computes where the kick sends the ball, toward the attacked goal mouth.
func (p *Player) Aim(goal GoalLine, f Field) Position {
	left := p.Kick * 2
	target := p.Final

	switch goal {
	case LEFT_GOAL:
		move := min(p.Final.X, left)
		left -= move
		target.X -= move
	case RIGHT_GOAL:
		move := min(f.Length-1-p.Final.X, left)
		left -= move
		target.X += move
	}

	if p.Final.Y < f.GoalLow {
		target.Y += min(f.GoalLow-p.Final.Y, left)
	} else if p.Final.Y > f.GoalHigh {
		target.Y -= min(p.Final.Y-f.GoalHigh, left)
	}
	return target
}

func (t Team) Opponent() Team {
	switch t {
	case TEAM_A:
		return TEAM_B
	case TEAM_B:
		return TEAM_A
	}
	return TEAM_NONE
}

// FirstHalfGoals has team A attacking the left line.
func FirstHalfGoals() Goals {
	return Goals{A: LEFT_GOAL, B: RIGHT_GOAL}
}

func (g Goals) Swap() Goals {
	return Goals{A: g.B, B: g.A}
}

func (g Goals) Attacking(t Team) GoalLine {
	switch t {
	case TEAM_A:
		return g.A
	case TEAM_B:
		return g.B
	}
	return NO_GOAL
}

// Scorer is the team credited when the ball enters line.
func (g Goals) Scorer(line GoalLine) Team {
	switch {
	case line == NO_GOAL:
		return TEAM_NONE
	case line == g.A:
		return TEAM_A
	case line == g.B:
		return TEAM_B
	}
	return TEAM_NONE
}

// Record credits a goal and returns the scoring team.
func (s *Score) Record(line GoalLine, goals Goals) Team {
	team := goals.Scorer(line)
	switch team {
	case TEAM_A:
		s.A++
	case TEAM_B:
		s.B++
	}
	return team
}

func clip(d, limit int) int {
	if d > limit {
		return limit
	}
	if d < -limit {
		return -limit
	}
	return d
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
