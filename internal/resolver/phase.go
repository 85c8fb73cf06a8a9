package resolver

import "fmt"

// Phase is a state of a resolution run.
//
//	Extracting -> Registering -> Linking -> (RescuePending <-> Linking)
//	  -> Resolved -> ComputingAddresses -> DetectingConflicts -> Done
//	  -> Unresolved -> Diagnosing -> Failed
type Phase int

const (
	PhaseExtracting Phase = iota
	PhaseRegistering
	PhaseLinking
	PhaseRescuePending
	PhaseResolved
	PhaseComputingAddresses
	PhaseDetectingConflicts
	PhaseDone
	PhaseUnresolved
	PhaseDiagnosing
	PhaseFailed
)

var phaseNames = [...]string{
	PhaseExtracting:         "extracting",
	PhaseRegistering:        "registering",
	PhaseLinking:            "linking",
	PhaseRescuePending:      "rescue-pending",
	PhaseResolved:           "resolved",
	PhaseComputingAddresses: "computing-addresses",
	PhaseDetectingConflicts: "detecting-conflicts",
	PhaseDone:               "done",
	PhaseUnresolved:         "unresolved",
	PhaseDiagnosing:         "diagnosing",
	PhaseFailed:             "failed",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// IsTerminal reports whether a run ends in p.
func (p Phase) IsTerminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// next lists the legal successors of each phase.
var next = map[Phase][]Phase{
	PhaseExtracting:         {PhaseRegistering},
	PhaseRegistering:        {PhaseLinking},
	PhaseLinking:            {PhaseRescuePending, PhaseResolved, PhaseUnresolved},
	PhaseRescuePending:      {PhaseLinking},
	PhaseResolved:           {PhaseComputingAddresses},
	PhaseComputingAddresses: {PhaseDetectingConflicts},
	PhaseDetectingConflicts: {PhaseDone},
	PhaseUnresolved:         {PhaseDiagnosing},
	PhaseDiagnosing:         {PhaseFailed},
}

// CanTransition reports whether a run may move from p to to.
func (p Phase) CanTransition(to Phase) bool {
	for _, n := range next[p] {
		if n == to {
			return true
		}
	}
	return false
}
