package workflow

import "strings"

// Stage identifies one step of the approval workflow.
type Stage string

const (
	StageInterview      Stage = "A"
	StageBlueprint      Stage = "B"
	StageScaffold       Stage = "C"
	StageImplementation Stage = "D"
	StageVerification   Stage = "E"
	StageDone           Stage = "DONE"
)

// stageOrder lists the approval stages in workflow order. StageDone is the
// terminal marker past the last entry.
var stageOrder = []Stage{
	StageInterview,
	StageBlueprint,
	StageScaffold,
	StageImplementation,
	StageVerification,
}

var stageNames = map[Stage]string{
	StageInterview:      "interview",
	StageBlueprint:      "blueprint",
	StageScaffold:       "scaffold",
	StageImplementation: "implementation",
	StageVerification:   "verification",
	StageDone:           "done",
}

// Stages returns the five approval stages in order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Name returns the human label for a stage.
func (s Stage) Name() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return string(s)
}

// Known reports whether s is an approval stage (DONE excluded).
func (s Stage) Known() bool {
	return s.index() >= 0
}

func (s Stage) index() int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// next returns the stage after s, or StageDone past the last one.
func (s Stage) next() Stage {
	idx := s.index()
	if idx < 0 || idx == len(stageOrder)-1 {
		return StageDone
	}
	return stageOrder[idx+1]
}

// atOrPast reports whether s equals other or comes later in the workflow.
// StageDone is past everything.
func (s Stage) atOrPast(other Stage) bool {
	if s == StageDone {
		return true
	}
	idx, otherIdx := s.index(), other.index()
	return idx >= 0 && otherIdx >= 0 && idx >= otherIdx
}

// ParseStage resolves a stage letter or name from user input, case
// insensitively. DONE is not approvable and never parses.
func ParseStage(raw string) (Stage, bool) {
	for _, stage := range stageOrder {
		if strings.EqualFold(raw, string(stage)) || strings.EqualFold(raw, stageNames[stage]) {
			return stage, true
		}
	}
	return "", false
}
