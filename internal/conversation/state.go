package conversation

// State is the per-phone position in the lead dialogue. Finalized is
// terminal: later messages only get the fixed acknowledgment.
type State int

const (
	// StateNew means the phone has been seen but no outbound send was
	// issued yet. It is left immediately, either by the campaign send or
	// by the passive-lead introduction.
	StateNew State = iota
	// StateAwaitingConfirmation means the initial message went out and a
	// yes/no reply is expected.
	StateAwaitingConfirmation
	// StateAwaitingDetails means an unknown lead agreed and was asked for
	// their case details.
	StateAwaitingDetails
	// StateFinalized means the conversation reached its end.
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateAwaitingDetails:
		return "awaiting_details"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}
