package nav

import "errors"

var (
	// ErrNoPath means the open set emptied before reaching the goal.
	ErrNoPath = errors.New("nav: no path exists")
	// ErrIterationLimit means the search was aborted at the iteration
	// ceiling. A path may exist.
	ErrIterationLimit = errors.New("nav: search iteration limit reached")
)

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrIterationLimit):
		return "iteration_limit"
	case errors.Is(err, ErrNoPath):
		return "no_path"
	default:
		return "unknown"
	}
}
