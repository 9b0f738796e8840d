package sandbox

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLanguage is returned for submissions naming a language no
// pipeline was configured for.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// InfraError reports a failure of the container runtime itself: unreachable
// daemon, failed pull, create, start, inspect or remove, or an unknown
// post-execution state. It is always fatal to the current request and is
// never retried.
type InfraError struct {
	Op  string
	Err error
}

func (e *InfraError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("infrastructure failure during %s", e.Op)
	}
	return fmt.Sprintf("infrastructure failure during %s: %v", e.Op, e.Err)
}

func (e *InfraError) Unwrap() error { return e.Err }

// MemoryLimitError reports that the container was killed by the runtime for
// exceeding its memory ceiling. It is a distinct, user-facing classification
// and is never folded into captured stderr.
type MemoryLimitError struct {
	ContainerID string
}

func (e *MemoryLimitError) Error() string { return "container memory limit exceeded" }

// ExecError reports an I/O failure while attaching to or reading the
// interpreter's streams.
type ExecError struct {
	Err error
}

func (e *ExecError) Error() string { return fmt.Sprintf("interpreter execution failed: %v", e.Err) }

func (e *ExecError) Unwrap() error { return e.Err }

// IsInfra reports whether err is classified as an infrastructure failure.
func IsInfra(err error) bool {
	var infraErr *InfraError
	return errors.As(err, &infraErr)
}

// IsMemoryLimit reports whether err is classified as a memory-limit kill.
func IsMemoryLimit(err error) bool {
	var memErr *MemoryLimitError
	return errors.As(err, &memErr)
}

// IsExec reports whether err is classified as an execution I/O failure.
func IsExec(err error) bool {
	var execErr *ExecError
	return errors.As(err, &execErr)
}
