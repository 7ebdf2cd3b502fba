package pending

type State int

const (
	StatePresent State = iota
	StatePendingRemoval
	StateRestored
	StateCommitted
	// stateAbandoned marks deletions dropped by Close; their timers must not
	// commit anything.
	stateAbandoned
)

func (s State) String() string {
	switch s {
	case StatePresent:
		return "present"
	case StatePendingRemoval:
		return "pending_removal"
	case StateRestored:
		return "restored"
	case StateCommitted:
		return "committed"
	case stateAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Policy selects what happens after a deferred removal reaches the backend.
type Policy int

const (
	// PolicyReconcile re-fetches the authoritative cart after a successful
	// removal so concurrent server-side changes show up locally.
	PolicyReconcile Policy = iota
	// PolicyTrustLocal keeps the optimistic local state as final. A failed
	// removal leaves the item gone locally but present on the server until
	// the next full load.
	PolicyTrustLocal
)

func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "", "reconcile":
		return PolicyReconcile, true
	case "trust-local":
		return PolicyTrustLocal, true
	}
	return PolicyReconcile, false
}

func (p Policy) String() string {
	if p == PolicyTrustLocal {
		return "trust-local"
	}
	return "reconcile"
}
