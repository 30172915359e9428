package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentOfPartitionsField(t *testing.T) {
	f := DefaultField()
	require.NoError(t, f.Validate())

	counts := make(map[int]int)
	for x := 0; x < f.Length; x++ {
		for y := 0; y < f.Width; y++ {
			s, err := f.SegmentOf(Position{X: x, Y: y})
			require.NoError(t, err)
			require.True(t, s >= 0 && s < f.Segments(), "segment %d", s)

			min, max, err := f.Bounds(s)
			require.NoError(t, err)
			require.True(t, x >= min.X && x <= max.X && y >= min.Y && y <= max.Y)
			counts[s]++
		}
	}
	assert.Len(t, counts, 12)
	for s, n := range counts {
		assert.Equal(t, 32*32, n, "segment %d", s)
	}
}

func TestSegmentOfReferenceCells(t *testing.T) {
	f := DefaultField()
	cases := []struct {
		p    Position
		want int
	}{
		{Position{0, 0}, 0},
		{Position{31, 31}, 0},
		{Position{32, 0}, 1},
		{Position{95, 10}, 2},
		{Position{96, 10}, 3},
		{Position{127, 95}, 11},
		{Position{64, 48}, 6},
		{Position{0, 64}, 8},
	}
	for _, c := range cases {
		got, err := f.SegmentOf(c.p)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "position %v", c.p)
	}
}

func TestSegmentOfOutOfBounds(t *testing.T) {
	f := DefaultField()
	for _, p := range []Position{{-1, 0}, {0, -1}, {128, 0}, {0, 96}} {
		_, err := f.Locate(17, p)
		var te *TopologyError
		require.True(t, errors.As(err, &te), "position %v", p)
		assert.Equal(t, 17, te.Id)
		assert.Equal(t, p, te.Position)
	}
}

func TestValidateRejectsUnevenGrid(t *testing.T) {
	f := DefaultField()
	f.Cols = 5
	assert.True(t, errors.Is(f.Validate(), ErrSizing))

	f = DefaultField()
	f.GoalHigh = f.Width
	assert.True(t, errors.Is(f.Validate(), ErrSizing))
}

func TestGoalAt(t *testing.T) {
	f := DefaultField()
	assert.Equal(t, LEFT_GOAL, f.GoalAt(Position{0, 43}))
	assert.Equal(t, LEFT_GOAL, f.GoalAt(Position{0, 51}))
	assert.Equal(t, RIGHT_GOAL, f.GoalAt(Position{127, 47}))
	assert.Equal(t, NO_GOAL, f.GoalAt(Position{0, 42}))
	assert.Equal(t, NO_GOAL, f.GoalAt(Position{127, 52}))
	assert.Equal(t, NO_GOAL, f.GoalAt(Position{1, 47}))
	assert.Equal(t, NO_GOAL, f.GoalAt(f.Center()))
}

func TestMembership(t *testing.T) {
	f := DefaultField()
	m, err := f.Membership([]PlayerState{
		{Id: 12, Final: Position{1, 1}},
		{Id: 13, Final: Position{64, 48}},
		{Id: 14, Final: Position{70, 40}},
	})
	require.NoError(t, err)
	assert.Len(t, m, 12)
	assert.Equal(t, []int{12}, m[0])
	assert.Equal(t, []int{13, 14}, m[6])
	assert.Empty(t, m[11])

	_, err = f.Membership([]PlayerState{{Id: 20, Final: Position{200, 0}}})
	var te *TopologyError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 20, te.Id)
}
