package model

// ServerMessage is what spectators receive, gob encoded, one per websocket frame.
type ServerMessage struct {
	Setup  []Setup
	Rounds []RoundReport
	Finals []FinalReport
}

type Setup struct {
	Field   Field
	Rounds  int
	Players []PlayerState
}

type PlayerState struct {
	Id        int
	Team      Team
	Segment   int
	Initial   Position
	Final     Position
	Reached   bool
	Kicked    bool
	Challenge int
	Changed   bool
}

type RoundReport struct {
	Half      int
	Round     int
	Ball      Position
	Score     Score
	Regrouped bool
	Goal      GoalLine
	Scorer    Team
	Players   []PlayerState
	Segments  Membership
}

type FinalReport struct {
	Score Score
}

func (p *Player) State(segment int, changed bool) PlayerState {
	return PlayerState{
		Id:        p.Id,
		Team:      p.Team,
		Segment:   segment,
		Initial:   p.Initial,
		Final:     p.Final,
		Reached:   p.Reached,
		Kicked:    p.Kicked,
		Challenge: p.Challenge,
		Changed:   changed,
	}
}
