package query

// Source is a readable, subscribable value such as state.Value.
type Source[S any] interface {
	Get() S
	Subscribe(fn func(S)) (unsubscribe func())
}

// Enabled decides whether a query may execute.
type Enabled struct {
	eval  func() bool
	watch func(onChange func()) (stop func())
}

// Always enables the query unconditionally.
func Always() Enabled {
	return Enabled{}
}

// EnabledOnce evaluates eval a single time, when called, and never again.
// Later changes to whatever eval reads have no effect on the query.
func EnabledOnce(eval func() bool) Enabled {
	v := eval()
	return Enabled{eval: func() bool { return v }}
}

// EnabledFrom re-evaluates pred against src on every read and wakes running
// watchers whenever src changes.
func EnabledFrom[S any](src Source[S], pred func(S) bool) Enabled {
	return Enabled{
		eval: func() bool { return pred(src.Get()) },
		watch: func(onChange func()) func() {
			return src.Subscribe(func(S) { onChange() })
		},
	}
}

func (e Enabled) enabled() bool {
	if e.eval == nil {
		return true
	}
	return e.eval()
}

// reactive reports whether the condition can change after construction.
func (e Enabled) reactive() bool {
	return e.watch != nil
}

func (e Enabled) subscribe(onChange func()) func() {
	if e.watch == nil {
		return func() {}
	}
	return e.watch(onChange)
}
