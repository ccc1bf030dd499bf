package game

import (
	"slices"

	"github.com/google/uuid"
)

// Scheduler maps a monotonically increasing turn counter onto a fixed slot
// order in snake fashion: odd rounds walk the order backwards.
type Scheduler struct {
	order []uuid.UUID
	turn  int
}

func NewScheduler(order []uuid.UUID, turn int) *Scheduler {
	return &Scheduler{order: slices.Clone(order), turn: turn}
}

// SlotForTurn returns the slot drafting at turn n with r teams.
func SlotForTurn(n, r int) int {
	if r <= 0 {
		return -1
	}
	round := n / r
	slot := n % r
	if round%2 == 1 {
		slot = r - 1 - slot
	}
	return slot
}

func (s *Scheduler) Turn() int {
	return s.turn
}

func (s *Scheduler) Round() int {
	if len(s.order) == 0 {
		return 0
	}
	return s.turn / len(s.order)
}

// Current returns the team drafting at the current turn.
func (s *Scheduler) Current() uuid.UUID {
	slot := SlotForTurn(s.turn, len(s.order))
	if slot < 0 {
		return uuid.Nil
	}
	return s.order[slot]
}

// Advance moves to the next turn whose team still has room. When no team
// has room it returns false and the counter stays where it was.
func (s *Scheduler) Advance(hasRoom func(uuid.UUID) bool) bool {
	if !slices.ContainsFunc(s.order, hasRoom) {
		return false
	}
	s.turn++
	for !hasRoom(s.Current()) {
		s.turn++
	}
	return true
}

// RoundView is the order as walked in the current round.
func (s *Scheduler) RoundView() []uuid.UUID {
	view := slices.Clone(s.order)
	if s.Round()%2 == 1 {
		slices.Reverse(view)
	}
	return view
}
