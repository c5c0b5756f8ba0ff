package kase

type CreatedEvent struct {
	Result Case
}

type UpdatedEvent struct {
	Result Case
}

type DeletedEvent struct {
	Result Case
}

// SLABreachedEvent fires once when the sweep marks an open case past
// its due time.
type SLABreachedEvent struct {
	Result Case
}
