// Package session renders live pipeline progress in the terminal while a
// question is being answered. It translates orchestrator state transitions
// into a docker-compose-like stage list with a spinner on the stage that is
// currently running.
package session

import (
	"sqlsage/cli/internal/pipeline"
)

// stageView is what one observed transition means for the display: which
// stage just finished and which one is now running.
type stageView struct {
	completed string
	inflight  string
}

// stageViews maps orchestrator states to display text. Transient states
// (correcting, recovery) only swap the in-flight line; they complete nothing.
var stageViews = map[pipeline.State]stageView{
	pipeline.StateStart:            {completed: "", inflight: "reading schema"},
	pipeline.StateSchemaSelected:   {completed: "schema selected", inflight: "resolving entities"},
	pipeline.StateEntitiesResolved: {completed: "entities resolved", inflight: "planning query"},
	pipeline.StatePlanBuilt:        {completed: "plan built", inflight: "synthesizing query"},
	pipeline.StateSQLSynthesized:   {completed: "query synthesized", inflight: "validating query"},
	pipeline.StateValidated:        {completed: "query validated", inflight: "executing query"},
	pipeline.StateCorrecting:       {completed: "", inflight: "correcting query"},
	pipeline.StateExecuted:         {completed: "query executed", inflight: "analyzing results"},
	pipeline.StateRecovery:         {completed: "", inflight: "recovering from empty result"},
	pipeline.StateDone:             {completed: "", inflight: ""},
}
