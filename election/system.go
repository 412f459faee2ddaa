// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSystem is returned when a system name or value is not recognised.
var ErrUnknownSystem = errors.New("unknown electoral system")

// System is an electoral system the engine can calculate.
type System uint8

const (
	FPTP System = iota + 1
	TRS
	IRV
	PartyList
	STV
	MMP
	Parallel
	Borda
	Condorcet
)

var systemNames = map[System]string{
	FPTP:      "fptp",
	TRS:       "trs",
	IRV:       "irv",
	PartyList: "party-list",
	STV:       "stv",
	MMP:       "mmp",
	Parallel:  "parallel",
	Borda:     "borda",
	Condorcet: "condorcet",
}

var systemTitles = map[System]string{
	FPTP:      "First Past the Post",
	TRS:       "Two-Round System",
	IRV:       "Instant Runoff Voting",
	PartyList: "Party-List PR",
	STV:       "Single Transferable Vote",
	MMP:       "Mixed-Member Proportional",
	Parallel:  "Parallel Voting",
	Borda:     "Borda Count",
	Condorcet: "Condorcet Method",
}

// Systems lists every supported system in declaration order.
func Systems() []System {
	return []System{FPTP, TRS, IRV, PartyList, STV, MMP, Parallel, Borda, Condorcet}
}

// ParseSystem accepts a system name in any case. "party_list", "partylist"
// and "ranked-choice" are accepted as aliases.
func ParseSystem(name string) (System, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "party_list", "partylist", "list":
		return PartyList, nil
	case "ranked-choice", "rcv":
		return IRV, nil
	case "two-round", "runoff":
		return TRS, nil
	}
	for s, sn := range systemNames {
		if sn == n {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSystem, name)
}

func (s System) String() string {
	if n, ok := systemNames[s]; ok {
		return n
	}
	return fmt.Sprintf("System(%d)", uint8(s))
}

// Title is the human-readable name of the system.
func (s System) Title() string {
	if t, ok := systemTitles[s]; ok {
		return t
	}
	return s.String()
}

func (s System) MarshalText() ([]byte, error) {
	n, ok := systemNames[s]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSystem, uint8(s))
	}
	return []byte(n), nil
}

func (s *System) UnmarshalText(text []byte) error {
	parsed, err := ParseSystem(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
