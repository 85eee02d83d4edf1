package domain

import "errors"

// Common domain errors.
var (
	// ErrNoUsableClients indicates that no provider client could be
	// constructed at startup. This is the only error that terminates the
	// process; every per-call or per-judge failure is represented as data.
	ErrNoUsableClients = errors.New("no usable provider clients")

	// ErrInvalidParticipant indicates a malformed "provider/model" spec.
	ErrInvalidParticipant = errors.New("invalid participant spec")

	// ErrNoTasks indicates that a round was started with an empty task set.
	ErrNoTasks = errors.New("no tasks submitted to round")
)

// KindClassifier is implemented by errors that know their place in the
// ErrorKind taxonomy. The provider boundary attaches a kind to every
// transport error; the executor recovers it with errors.As without
// depending on any provider package.
type KindClassifier interface {
	Kind() ErrorKind
}

// KindOf extracts the ErrorKind from an error chain, falling back to
// ErrorKindUnknown when no classification is present.
func KindOf(err error) ErrorKind {
	var kc KindClassifier
	if errors.As(err, &kc) {
		return kc.Kind()
	}
	return ErrorKindUnknown
}
