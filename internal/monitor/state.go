// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

package monitor

import (
	"slices"
	"time"

	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

// maxChanges bounds the change log kept by State
const maxChanges = 100

// Change describes how a flag array differs from its previous read.
type Change struct {
	Time    time.Time
	Command integra.Command
	Set     []int // 1-based numbers that became active
	Cleared []int // 1-based numbers that became inactive
}

// State holds the latest flag array answer for every read command seen.
// Not safe for concurrent use.
type State struct {
	latest  map[integra.Command]*integra.FlagArrayAnswer
	updated map[integra.Command]time.Time
	changes []Change
	now     func() time.Time
}

// NewState creates an empty state table
func NewState() *State {
	return &State{
		latest:  make(map[integra.Command]*integra.FlagArrayAnswer),
		updated: make(map[integra.Command]time.Time),
		now:     time.Now,
	}
}

// Apply stores a flag array answer and reports whether it differs from the
// previous answer for the same command. The first answer for a command
// counts as a change. Other answer types are ignored.
func (s *State) Apply(a integra.Answer) bool {
	fa, ok := a.(*integra.FlagArrayAnswer)
	if !ok {
		return false
	}

	c := fa.Command()
	now := s.now()
	prev, seen := s.latest[c]
	s.latest[c] = fa
	s.updated[c] = now

	var before []bool
	if seen {
		before = prev.Flags()
		if slices.Equal(before, fa.Flags()) {
			return false
		}
	}

	set, cleared := diffFlags(before, fa.Flags())
	s.changes = append(s.changes, Change{Time: now, Command: c, Set: set, Cleared: cleared})
	if len(s.changes) > maxChanges {
		s.changes = s.changes[len(s.changes)-maxChanges:]
	}
	return true
}

// Latest returns the last answer stored for c
func (s *State) Latest(c integra.Command) (*integra.FlagArrayAnswer, bool) {
	a, ok := s.latest[c]
	return a, ok
}

// Updated returns when c was last applied
func (s *State) Updated(c integra.Command) (time.Time, bool) {
	t, ok := s.updated[c]
	return t, ok
}

// Active returns the 1-based numbers set in the latest answer for c
func (s *State) Active(c integra.Command) []int {
	if a, ok := s.latest[c]; ok {
		return a.ActiveNumbers()
	}
	return nil
}

// Commands returns the commands with a stored answer in code order
func (s *State) Commands() []integra.Command {
	list := make([]integra.Command, 0, len(s.latest))
	for c := range s.latest {
		list = append(list, c)
	}
	slices.Sort(list)
	return list
}

// Changes returns the most recent changes, oldest first
func (s *State) Changes() []Change {
	return slices.Clone(s.changes)
}

// diffFlags lists the 1-based numbers that turned on and off between
// before and after. A nil before counts as all off.
func diffFlags(before, after []bool) (set, cleared []int) {
	n := max(len(before), len(after))
	for i := 0; i < n; i++ {
		was := i < len(before) && before[i]
		is := i < len(after) && after[i]
		switch {
		case is && !was:
			set = append(set, i+1)
		case was && !is:
			cleared = append(cleared, i+1)
		}
	}
	return set, cleared
}
