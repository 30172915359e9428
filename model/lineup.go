package model

import "fmt"

// Entry is one roster line. Start is nil for a random placement in the home segment.
type Entry struct {
	Team Team
	Attributes
	Start *Position
}

type Lineup []Entry

var DefaultAttributes = Attributes{Speed: 10, Dribbling: 1, Kick: 4}

func DefaultLineup(teamSize int) Lineup {
	l := make(Lineup, 0, 2*teamSize)
	for _, team := range []Team{TEAM_A, TEAM_B} {
		for i := 0; i < teamSize; i++ {
			l = append(l, Entry{Team: team, Attributes: DefaultAttributes})
		}
	}
	return l
}

// Split returns the team A and team B entries, each in roster order.
func (l Lineup) Split() (a, b []Entry) {
	for _, e := range l {
		switch e.Team {
		case TEAM_A:
			a = append(a, e)
		case TEAM_B:
			b = append(b, e)
		}
	}
	return a, b
}

func (l Lineup) Validate(f Field) error {
	a, b := l.Split()
	if len(a) == 0 || len(b) == 0 {
		return fmt.Errorf("lineup needs players on both teams, got %d and %d", len(a), len(b))
	}
	if len(a)+len(b) != len(l) {
		return fmt.Errorf("lineup has %d entries without a team", len(l)-len(a)-len(b))
	}
	for i, e := range l {
		if e.Speed < 0 || e.Dribbling < 0 || e.Kick < 0 {
			return fmt.Errorf("lineup entry %d: negative attribute %+v", i, e.Attributes)
		}
		if e.Start != nil && !f.InBounds(*e.Start) {
			return &TopologyError{Id: -1, Position: *e.Start}
		}
	}
	return nil
}
