// Package comm implements the collective operations a fixed population of
// goroutines uses to coordinate: broadcast, gather, reduce, barrier and
// split into sub-groups.
//
// Every member of a group must invoke the same collectives on it in the same
// order. Each member holds its own *Comm handle and a handle must only be used
// from one goroutine. Messages are matched by a per-handle sequence number, so
// a member running ahead of the others is harmless: early messages are kept
// aside until the receiver reaches the matching collective.
package comm

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrCoordination = errors.New("comm: collective invoked non-uniformly")
	ErrFreed        = errors.New("comm: group already released")
	ErrRank         = errors.New("comm: rank outside group")
)

// UNDEFINED as a Split color leaves the caller out of every new group.
const UNDEFINED = -1

type Kind int

const (
	K_BCAST Kind = iota
	K_GATHER
	K_SPLIT
)

func (k Kind) Name() string {
	switch k {
	case K_BCAST:
		return "BCAST"
	case K_GATHER:
		return "GATHER"
	case K_SPLIT:
		return "SPLIT"
	default:
		return fmt.Sprintf("n/a:%d", k)
	}
}

type message struct {
	seq  int
	kind Kind
	from int
	body any
}

type key struct {
	seq  int
	from int
}

type group struct {
	members []int          // world rank of each group rank
	inbox   []chan message // receive channel of each group rank
}

func newGroup(members []int) *group {
	g := &group{
		members: members,
		inbox:   make([]chan message, len(members)),
	}
	depth := 4*len(members) + 16
	for i := range g.inbox {
		g.inbox[i] = make(chan message, depth)
	}
	return g
}

// Comm is one member's handle on a group.
type Comm struct {
	g     *group
	rank  int
	seq   int
	oom   map[key]message // out-of-order messages not yet consumed
	freed bool
}

func newComm(g *group, rank int) *Comm {
	return &Comm{g: g, rank: rank, oom: make(map[key]message)}
}

// NewWorld creates the group of all size participants and returns each one's handle,
// indexed by world rank.
func NewWorld(size int) []*Comm {
	members := make([]int, size)
	for i := range members {
		members[i] = i
	}
	g := newGroup(members)
	world := make([]*Comm, size)
	for i := range world {
		world[i] = newComm(g, i)
	}
	return world
}

func (c *Comm) Rank() int {
	return c.rank
}

func (c *Comm) Size() int {
	return len(c.g.members)
}

// Members lists the world ranks of the group, in group rank order.
func (c *Comm) Members() []int {
	return append([]int(nil), c.g.members...)
}

// WorldRank translates a group rank.
func (c *Comm) WorldRank(rank int) int {
	return c.g.members[rank]
}

// Free releases the handle. Any later collective on it fails with ErrFreed.
func (c *Comm) Free() {
	c.freed = true
	c.oom = nil
}

func (c *Comm) next() (int, error) {
	if c == nil || c.freed {
		return 0, ErrFreed
	}
	c.seq++
	return c.seq, nil
}

func (c *Comm) checkRank(rank int) error {
	if rank < 0 || rank >= c.Size() {
		return fmt.Errorf("%w: %d of %d", ErrRank, rank, c.Size())
	}
	return nil
}

func (c *Comm) send(ctx context.Context, to int, m message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case c.g.inbox[to] <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// recv waits for the message of collective seq coming from group rank from.
func (c *Comm) recv(ctx context.Context, seq int, kind Kind, from int) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := key{seq: seq, from: from}
	for {
		m, ok := c.oom[k]
		if ok {
			delete(c.oom, k)
			if m.kind != kind {
				return nil, fmt.Errorf("%w: rank %d expected %s #%d from %d, got %s",
					ErrCoordination, c.rank, kind.Name(), seq, from, m.kind.Name())
			}
			return m.body, nil
		}
		select {
		case m := <-c.g.inbox[c.rank]:
			if m.seq < seq {
				return nil, fmt.Errorf("%w: rank %d got stale %s #%d from %d while at #%d",
					ErrCoordination, c.rank, m.kind.Name(), m.seq, m.from, seq)
			}
			c.oom[key{seq: m.seq, from: m.from}] = m
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func as[T any](body any, c *Comm) (T, error) {
	v, ok := body.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: rank %d got malformed payload %T", ErrCoordination, c.rank, body)
	}
	return v, nil
}

// Broadcast sends root's v to every member. Every member returns root's value.
func Broadcast[T any](ctx context.Context, c *Comm, root int, v T) (T, error) {
	var zero T
	seq, err := c.next()
	if err != nil {
		return zero, err
	}
	if err := c.checkRank(root); err != nil {
		return zero, err
	}
	if c.rank == root {
		for to := range c.g.members {
			if to == root {
				continue
			}
			if err := c.send(ctx, to, message{seq: seq, kind: K_BCAST, from: root, body: v}); err != nil {
				return zero, err
			}
		}
		return v, nil
	}
	body, err := c.recv(ctx, seq, K_BCAST, root)
	if err != nil {
		return zero, err
	}
	return as[T](body, c)
}

// Gather collects every member's v at root, indexed by group rank.
// Non-root members get a nil slice.
func Gather[T any](ctx context.Context, c *Comm, root int, v T) ([]T, error) {
	seq, err := c.next()
	if err != nil {
		return nil, err
	}
	if err := c.checkRank(root); err != nil {
		return nil, err
	}
	if c.rank != root {
		return nil, c.send(ctx, root, message{seq: seq, kind: K_GATHER, from: c.rank, body: v})
	}
	all := make([]T, c.Size())
	all[root] = v
	for from := range c.g.members {
		if from == root {
			continue
		}
		body, err := c.recv(ctx, seq, K_GATHER, from)
		if err != nil {
			return nil, err
		}
		if all[from], err = as[T](body, c); err != nil {
			return nil, err
		}
	}
	return all, nil
}

// Reduce folds every member's v in group rank order and hands the result to all.
func Reduce[T any](ctx context.Context, c *Comm, v T, fold func(T, T) T) (T, error) {
	var zero T
	all, err := Gather(ctx, c, 0, v)
	if err != nil {
		return zero, err
	}
	var acc T
	if c.rank == 0 {
		acc = all[0]
		for _, x := range all[1:] {
			acc = fold(acc, x)
		}
	}
	return Broadcast(ctx, c, 0, acc)
}

// AnyTrue is the logical OR of every member's flag.
func AnyTrue(ctx context.Context, c *Comm, flag bool) (bool, error) {
	return Reduce(ctx, c, flag, func(a, b bool) bool { return a || b })
}

// Barrier returns once every member of the group has entered it.
func Barrier(ctx context.Context, c *Comm) error {
	_, err := Reduce(ctx, c, struct{}{}, func(a, _ struct{}) struct{} { return a })
	return err
}

type splitRequest struct {
	Color, Key int
}

// Split partitions the group: members passing the same color end up in one new
// group, ordered by key and then by their rank here. Members passing UNDEFINED
// get a nil handle. Every member of c must call it.
func Split(ctx context.Context, c *Comm, color, key int) (*Comm, error) {
	all, err := Gather(ctx, c, 0, splitRequest{Color: color, Key: key})
	if err != nil {
		return nil, err
	}

	var handles []*Comm
	if c.rank == 0 {
		handles = c.split(all)
	}

	seq, err := c.next()
	if err != nil {
		return nil, err
	}
	if c.rank == 0 {
		for to := 1; to < c.Size(); to++ {
			if err := c.send(ctx, to, message{seq: seq, kind: K_SPLIT, from: 0, body: handles[to]}); err != nil {
				return nil, err
			}
		}
		return handles[0], nil
	}
	body, err := c.recv(ctx, seq, K_SPLIT, 0)
	if err != nil {
		return nil, err
	}
	return as[*Comm](body, c)
}

func (c *Comm) split(reqs []splitRequest) []*Comm {
	byColor := make(map[int][]int)
	for rank, r := range reqs {
		if r.Color == UNDEFINED {
			continue
		}
		byColor[r.Color] = append(byColor[r.Color], rank)
	}

	handles := make([]*Comm, len(reqs))
	for _, ranks := range byColor {
		sort.SliceStable(ranks, func(i, j int) bool {
			return reqs[ranks[i]].Key < reqs[ranks[j]].Key
		})
		members := make([]int, len(ranks))
		for i, r := range ranks {
			members[i] = c.g.members[r]
		}
		g := newGroup(members)
		for i, r := range ranks {
			handles[r] = newComm(g, i)
		}
	}
	return handles
}
