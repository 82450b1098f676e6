package orchestration

import (
	"encoding/json"

	"github.com/imamik/rtctl/internal/inventory"
)

// State is a step of an operation's state machine.
type State string

// Operation states.
const (
	StateResolving   State = "RESOLVING"
	StateTargetReady State = "TARGET_READY"
	StateLeftLinked  State = "LEFT_LINKED"
	StateRightLinked State = "RIGHT_LINKED"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

// Outcome describes what happened on one side of an operation.
type Outcome string

// Side outcomes.
const (
	OutcomeLinked        Outcome = "linked"
	OutcomeAlreadyLinked Outcome = "already-linked"
	OutcomeUnlinked      Outcome = "unlinked"
	OutcomeAlreadyAbsent Outcome = "already-absent"
	OutcomeSkipped       Outcome = "skipped"
)

// Operation names.
const (
	OpEnableRouting     = "enable-routing"
	OpDisableRouting    = "disable-routing"
	OpAddRouteTarget    = "add-route-target"
	OpRemoveRouteTarget = "remove-route-target"
)

// Side names.
const (
	SideLeft    = "left"
	SideRight   = "right"
	SideNetwork = "network"
)

// SideResult is the outcome of the association step on one network.
type SideResult struct {
	Side            string  `json:"side"`
	Network         string  `json:"network"`
	NetworkName     string  `json:"network_name"`
	Instance        string  `json:"routing_instance,omitempty"`
	InstanceName    string  `json:"routing_instance_name,omitempty"`
	InstanceCreated bool    `json:"routing_instance_created,omitempty"`
	InstanceDeleted bool    `json:"routing_instance_deleted,omitempty"`
	Direction       string  `json:"direction,omitempty"`
	Outcome         Outcome `json:"outcome"`
}

// Result reports how far an operation got. On failure State is StateFailed
// and Reached holds the last state entered before the failure.
type Result struct {
	Operation     string                  `json:"operation"`
	State         State                   `json:"state"`
	Reached       State                   `json:"reached"`
	Target        string                  `json:"target,omitempty"`
	TargetUUID    string                  `json:"target_uuid,omitempty"`
	TargetCreated bool                    `json:"target_created,omitempty"`
	TargetDeleted bool                    `json:"target_deleted,omitempty"`
	NoOp          bool                    `json:"no_op,omitempty"`
	Sides         []SideResult            `json:"sides"`
	Warnings      []error                 `json:"-"`
	Networks      []inventory.NetworkView `json:"networks"`
}

func newResult(operation string) *Result {
	return &Result{
		Operation: operation,
		State:     StateResolving,
		Reached:   StateResolving,
		Sides:     []SideResult{},
		Networks:  []inventory.NetworkView{},
	}
}

func (r *Result) advance(s State) {
	r.State = s
	r.Reached = s
}

func (r *Result) warn(err error) {
	r.Warnings = append(r.Warnings, err)
}

// Side returns the result for the named side.
func (r *Result) Side(name string) (SideResult, bool) {
	for _, s := range r.Sides {
		if s.Side == name {
			return s, true
		}
	}
	return SideResult{}, false
}

// MarshalJSON renders warnings as their messages.
func (r *Result) MarshalJSON() ([]byte, error) {
	type plain Result
	warnings := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		warnings = append(warnings, w.Error())
	}
	return json.Marshal(struct {
		*plain
		Warnings []string `json:"warnings"`
	}{plain: (*plain)(r), Warnings: warnings})
}
