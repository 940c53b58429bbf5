package feed

import "fmt"

// Decision is the branch the gate takes for one load cycle.
type Decision string

const (
	DecisionUseCacheOnly    Decision = "use_cache_only"
	DecisionFetchAndReplace Decision = "fetch_and_replace"
	DecisionFetchDirect     Decision = "fetch_direct"
)

// Decide picks the branch for a cycle. cacheAge is nil when no usable cache
// exists; freshness is nil when the freshness lookup failed.
func Decide(cacheAge *int64, freshness *Freshness) Decision {
	if cacheAge == nil {
		return DecisionFetchDirect
	}
	if freshness == nil {
		return DecisionUseCacheOnly
	}
	if freshness.LastUpdatedMillis() <= *cacheAge {
		return DecisionUseCacheOnly
	}
	return DecisionFetchAndReplace
}

// State is the position of a load cycle in its lifecycle.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateCached   State = "cached"
	StateFetching State = "fetching"
	StateRendered State = "rendered"
	StateError    State = "error"
)

var transitions = map[State][]State{
	StateIdle:     {StateLoading},
	StateLoading:  {StateCached, StateFetching},
	StateCached:   {StateRendered, StateFetching},
	StateFetching: {StateRendered, StateError},
}

// Next returns to, or an error when the move from s is not allowed.
func (s State) Next(to State) (State, error) {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return to, nil
		}
	}
	return s, fmt.Errorf("illegal feed state transition %s -> %s", s, to)
}

// Terminal reports whether no further transition is possible in this cycle.
func (s State) Terminal() bool {
	return s == StateRendered || s == StateError
}

// Source tells a renderer where the items in a view came from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
)

// View is one render of a feed. Err is set only for the user-visible error
// state, in which case Items is empty.
type View[T any] struct {
	Kind   Kind
	Items  []T
	Source Source
	Err    error
}

// Empty reports a successful view with nothing to show.
func (v View[T]) Empty() bool {
	return v.Err == nil && len(v.Items) == 0
}

// Renderer receives every view a load cycle produces, in order.
type Renderer[T any] interface {
	Render(View[T])
}

// RenderFunc adapts a function to Renderer.
type RenderFunc[T any] func(View[T])

func (f RenderFunc[T]) Render(v View[T]) { f(v) }
