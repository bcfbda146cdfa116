package orchestrator

// State tracks where an exchange is in its lifecycle. Transitions:
// Idle -> Retrieving -> Composing -> AwaitingModel -> Integrating -> Idle,
// with Errored reachable from any non-idle state.
type State string

const (
	StateIdle          State = "IDLE"
	StateRetrieving    State = "RETRIEVING"
	StateComposing     State = "COMPOSING"
	StateAwaitingModel State = "AWAITING_MODEL"
	StateIntegrating   State = "INTEGRATING"
	StateErrored       State = "ERRORED"
)
