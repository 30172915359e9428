package model

import "fmt"

type Position struct {
	X, Y int
}

func (p Position) String() string {
	return fmt.Sprintf("%d %d", p.X, p.Y)
}

type Role int

const (
	ROLE_OWNER Role = iota
	ROLE_TEAM_A
	ROLE_TEAM_B
)

type Team int

const (
	TEAM_NONE Team = iota
	TEAM_A
	TEAM_B
)

type GoalLine int

const (
	LEFT_GOAL  GoalLine = -1
	NO_GOAL    GoalLine = 0
	RIGHT_GOAL GoalLine = 1
)

// NO_BID is the challenge value of a player not contending for the ball.
const NO_BID = -1

// NO_WINNER means nobody in the segment reached the ball this round.
const NO_WINNER = -1

type Attributes struct {
	Speed     int
	Dribbling int
	Kick      int
}

type Player struct {
	Id      int
	Team    Team
	Home    int
	Initial Position
	Final   Position

	Reached   bool
	Kicked    bool
	Challenge int

	Attributes
}

// Field holds the sizing of a match. Length runs along x, Width along y.
type Field struct {
	Length, Width int
	Cols, Rows    int
	GoalLow       int
	GoalHigh      int
	MaxSpeed      int
	BidMax        int
}

type Score struct {
	A, B int
}

// Goals tells which goal line each team attacks.
type Goals struct {
	A, B GoalLine
}

// Membership maps a segment id to the ids of the players located in it.
type Membership map[int][]int
