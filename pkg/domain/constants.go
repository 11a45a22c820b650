package domain

import "strings"

// Reserved separators of the journey token format:
//
//	<journeyName>~<stageId1>-<stageId2>-...
//
// Neither may appear in a journey name or in a stage id.
const (
	// JourneyNameSeparator splits the journey name from its history.
	JourneyNameSeparator = "~"
	// StageSeparator splits history entries.
	StageSeparator = "-"
)

// ContextParamName is the request parameter carrying the serialized journey token.
const ContextParamName = "ctx_journey"

// MaxDecisionDepth bounds the number of decision stages a single event may
// traverse before resolution is abandoned.
const MaxDecisionDepth = 32

// ContainsSeparator reports whether s contains any reserved separator.
func ContainsSeparator(s string) bool {
	return strings.ContainsAny(s, JourneyNameSeparator+StageSeparator)
}
