package reachability

// Manual is a [Monitor] whose belief is set explicitly.
type Manual struct {
	*notifier
}

// NewManual returns a Manual starting in the given state.
func NewManual(online bool) *Manual {
	return &Manual{notifier: newNotifier(online)}
}

// SetOnline changes the belief. Subscribers are notified only on an actual
// transition.
func (m *Manual) SetOnline(online bool) {
	m.set(online)
}
