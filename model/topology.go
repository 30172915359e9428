package model

import (
	"errors"
	"fmt"
)

var ErrSizing = errors.New("invalid field sizing")

// TopologyError reports a position that maps to no segment.
type TopologyError struct {
	Id       int
	Position Position
}

func (e *TopologyError) Error() string {
	if e.Id < 0 {
		return fmt.Sprintf("topology: position (%v) maps to no segment", e.Position)
	}
	return fmt.Sprintf("topology: participant %d at (%v) maps to no segment", e.Id, e.Position)
}

func DefaultField() Field {
	return Field{
		Length:   128,
		Width:    96,
		Cols:     4,
		Rows:     3,
		GoalLow:  43,
		GoalHigh: 51,
		MaxSpeed: 10,
		BidMax:   9,
	}
}

func (f Field) Validate() error {
	switch {
	case f.Cols <= 0 || f.Rows <= 0:
		return fmt.Errorf("%w: grid %dx%d", ErrSizing, f.Cols, f.Rows)
	case f.Length <= 0 || f.Width <= 0:
		return fmt.Errorf("%w: field %dx%d", ErrSizing, f.Length, f.Width)
	case f.Length%f.Cols != 0 || f.Width%f.Rows != 0:
		return fmt.Errorf("%w: field %dx%d does not split into %dx%d equal cells",
			ErrSizing, f.Length, f.Width, f.Cols, f.Rows)
	case f.GoalLow < 0 || f.GoalHigh >= f.Width || f.GoalLow > f.GoalHigh:
		return fmt.Errorf("%w: goal band [%d,%d]", ErrSizing, f.GoalLow, f.GoalHigh)
	case f.MaxSpeed <= 0 || f.BidMax <= 0:
		return fmt.Errorf("%w: max speed %d, bid max %d", ErrSizing, f.MaxSpeed, f.BidMax)
	}
	return nil
}

func (f Field) Segments() int {
	return f.Cols * f.Rows
}

func (f Field) cellLength() int {
	return f.Length / f.Cols
}

func (f Field) cellWidth() int {
	return f.Width / f.Rows
}

func (f Field) InBounds(p Position) bool {
	return p.X >= 0 && p.X < f.Length && p.Y >= 0 && p.Y < f.Width
}

// SegmentOf maps a position to the grid cell owning it, row major.
func (f Field) SegmentOf(p Position) (int, error) {
	return f.Locate(-1, p)
}

// Locate is SegmentOf with the participant identity attached to the error.
func (f Field) Locate(id int, p Position) (int, error) {
	if !f.InBounds(p) {
		return -1, &TopologyError{Id: id, Position: p}
	}
	col := p.X / f.cellLength()
	row := p.Y / f.cellWidth()
	return row*f.Cols + col, nil
}

// Bounds returns the inclusive corners of a segment.
func (f Field) Bounds(segment int) (min, max Position, err error) {
	if segment < 0 || segment >= f.Segments() {
		return min, max, fmt.Errorf("%w: segment %d out of %d", ErrSizing, segment, f.Segments())
	}
	col := segment % f.Cols
	row := segment / f.Cols
	min = Position{X: col * f.cellLength(), Y: row * f.cellWidth()}
	max = Position{X: min.X + f.cellLength() - 1, Y: min.Y + f.cellWidth() - 1}
	return min, max, nil
}

func (f Field) Center() Position {
	return Position{X: f.Length / 2, Y: f.Width / 2}
}

// GoalAt reports which goal mouth the ball lies in, if any.
func (f Field) GoalAt(ball Position) GoalLine {
	if ball.Y < f.GoalLow || ball.Y > f.GoalHigh {
		return NO_GOAL
	}
	switch ball.X {
	case 0:
		return LEFT_GOAL
	case f.Length - 1:
		return RIGHT_GOAL
	}
	return NO_GOAL
}

// Membership derives the segment view from a table of player positions.
func (f Field) Membership(players []PlayerState) (Membership, error) {
	m := make(Membership, f.Segments())
	for s := 0; s < f.Segments(); s++ {
		m[s] = []int{}
	}
	for _, p := range players {
		s, err := f.Locate(p.Id, p.Final)
		if err != nil {
			return nil, err
		}
		m[s] = append(m[s], p.Id)
	}
	return m, nil
}
