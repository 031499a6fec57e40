package records

// Lifecycle names the statuses a record kind may hold and the forward edges
// between them. A status with no outgoing edges is terminal.
type Lifecycle struct {
	name  string
	edges map[Status][]Status
}

// TestRequestLifecycle is monotonic: pending -> processing -> completed, with
// pending -> completed allowed directly.
var TestRequestLifecycle = Lifecycle{
	name: "test request",
	edges: map[Status][]Status{
		StatusPending:    {StatusProcessing, StatusCompleted},
		StatusProcessing: {StatusCompleted},
		StatusCompleted:  nil,
	},
}

// AppointmentRequestLifecycle allows exactly one decision per request.
var AppointmentRequestLifecycle = Lifecycle{
	name: "appointment request",
	edges: map[Status][]Status{
		StatusPending:  {StatusApproved, StatusRejected},
		StatusApproved: nil,
		StatusRejected: nil,
	},
}

func (l Lifecycle) Name() string { return l.name }

func (l Lifecycle) Known(s Status) bool {
	_, ok := l.edges[s]
	return ok
}

func (l Lifecycle) Terminal(s Status) bool {
	next, ok := l.edges[s]
	return ok && len(next) == 0
}

// Allows reports whether a record may move from one status to another.
// Staying in place is always allowed for known statuses.
func (l Lifecycle) Allows(from, to Status) bool {
	if !l.Known(from) || !l.Known(to) {
		return false
	}
	if from == to {
		return true
	}
	for _, s := range l.edges[from] {
		if s == to {
			return true
		}
	}
	return false
}
