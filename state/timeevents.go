// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"maps"
	"slices"
)

// Contract time events form a schedule of (time, contract) pairs. A snapshot
// records the pairs it adds and removes relative to its parent.

// AddTimeEvent schedules a time event for contract at t. It returns false
// if the event is already scheduled.
func (s *Snapshot) AddTimeEvent(contract string, t uint64) bool {
	return s.addTimeEvent(timeEvent{t, contract})
}

func (s *Snapshot) addTimeEvent(e timeEvent) bool {
	if _, ok := s.addedTimeEvents[e]; ok {
		return false
	}
	if _, ok := s.removedTimeEvents[e]; ok {
		delete(s.removedTimeEvents, e)
		return true
	}
	if s.parentHasTimeEvent(e) {
		return false
	}
	s.addedTimeEvents[e] = struct{}{}
	return true
}

// RemoveTimeEvent unschedules the time event of contract at t.
func (s *Snapshot) RemoveTimeEvent(contract string, t uint64) {
	s.removeTimeEvent(timeEvent{t, contract})
}

func (s *Snapshot) removeTimeEvent(e timeEvent) {
	if _, ok := s.removedTimeEvents[e]; ok {
		return
	}
	if _, ok := s.addedTimeEvents[e]; ok {
		delete(s.addedTimeEvents, e)
		return
	}
	if s.parentHasTimeEvent(e) {
		s.removedTimeEvents[e] = struct{}{}
	}
}

// HasTimeEvent reports whether contract has a time event scheduled at t.
func (s *Snapshot) HasTimeEvent(contract string, t uint64) bool {
	return s.hasTimeEvent(timeEvent{t, contract})
}

func (s *Snapshot) hasTimeEvent(e timeEvent) bool {
	if _, ok := s.removedTimeEvents[e]; ok {
		return false
	}
	if _, ok := s.addedTimeEvents[e]; ok {
		return true
	}
	return s.parentHasTimeEvent(e)
}

func (s *Snapshot) parentHasTimeEvent(e timeEvent) bool {
	if s.parent == nil {
		_, ok := s.root.timeEvents[e]
		return ok
	}
	return s.parent.hasTimeEvent(e)
}

// timeEventsUntil collects the visible events scheduled at or before t.
func (s *Snapshot) timeEventsUntil(t uint64) map[timeEvent]struct{} {
	var out map[timeEvent]struct{}
	if s.parent == nil {
		out = make(map[timeEvent]struct{})
		for e := range s.root.timeEvents {
			if e.Time <= t {
				out[e] = struct{}{}
			}
		}
	} else {
		out = s.parent.timeEventsUntil(t)
	}
	for e := range s.removedTimeEvents {
		delete(out, e)
	}
	for e := range s.addedTimeEvents {
		if e.Time <= t {
			out[e] = struct{}{}
		}
	}
	return out
}

// DueTimeEvents returns up to limit distinct contracts with a time event
// scheduled at or before t, earliest first. A limit <= 0 means no limit.
func (s *Snapshot) DueTimeEvents(t uint64, limit int) []string {
	events := slices.SortedFunc(maps.Keys(s.timeEventsUntil(t)), compareTimeEvents)
	seen := make(map[string]struct{})
	var out []string
	for _, e := range events {
		if limit > 0 && len(out) >= limit {
			break
		}
		if _, ok := seen[e.Address]; ok {
			continue
		}
		seen[e.Address] = struct{}{}
		out = append(out, e.Address)
	}
	return out
}

// RemovePendingTimeEvents unschedules every event at or before t of the
// given contracts.
func (s *Snapshot) RemovePendingTimeEvents(t uint64, contracts []string) {
	set := make(map[string]struct{}, len(contracts))
	for _, c := range contracts {
		set[c] = struct{}{}
	}
	for e := range s.timeEventsUntil(t) {
		if _, ok := set[e.Address]; ok {
			s.removeTimeEvent(e)
		}
	}
}
