package searchctl

import (
	"fmt"
	"strings"
)

// SearchMode selects which Launcher drives the root search.
type SearchMode int

const (
	// NegamaxSingle and PVSSingle both drive a single Iterative worker; the distinction
	// between plain Negamax and Principal Variation Search is a property of the Root
	// search.Search implementation passed to the engine, not of the launcher, so both
	// values select the same launcher here.
	NegamaxSingle SearchMode = iota
	PVSSingle
	// NegamaxSMP drives several Iterative workers over a shared transposition table
	// (Lazy SMP).
	NegamaxSMP
)

func (m SearchMode) String() string {
	switch m {
	case PVSSingle:
		return "PVS_SINGLE"
	case NegamaxSMP:
		return "NEGAMAX_SMP"
	default:
		return "NEGAMAX_SINGLE"
	}
}

// ParseSearchMode parses the recognized search_mode config values (NEGAMAX_SINGLE,
// NEGAMAX_SMP, PVS_SINGLE), case-insensitive.
func ParseSearchMode(s string) (SearchMode, error) {
	switch strings.ToUpper(s) {
	case "NEGAMAX_SINGLE":
		return NegamaxSingle, nil
	case "NEGAMAX_SMP":
		return NegamaxSMP, nil
	case "PVS_SINGLE":
		return PVSSingle, nil
	default:
		return 0, fmt.Errorf("unknown search_mode: %v", s)
	}
}
