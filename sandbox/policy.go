package sandbox

// Default resource constraints for interpreter containers.
const (
	DefaultMemoryLimitBytes = 32 * 1024 * 1024
	DefaultOutputLimitBytes = 1024
)

// ResourcePolicy defines the isolation and resource constraints applied to
// every sandbox a pipeline provisions. It is configuration and is not
// mutated after construction.
type ResourcePolicy struct {
	// MemoryLimitBytes is a hard ceiling. Exceeding it gets the container
	// killed by the runtime, which the teardown step detects.
	MemoryLimitBytes int64

	// NetworkDisabled cuts all network access inside the sandbox.
	NetworkDisabled bool

	// StdinOpen keeps the container's stdin open so the image's default
	// interpreter process stays alive for the exec step.
	StdinOpen bool

	// BindReadOnly mounts the staged source read-only. The sandbox must
	// never be able to modify the submitted code.
	BindReadOnly bool

	// OutputLimitBytes caps each captured stream independently.
	OutputLimitBytes int
}

// DefaultPolicy returns safe defaults for interpreter execution.
func DefaultPolicy() ResourcePolicy {
	return ResourcePolicy{
		MemoryLimitBytes: DefaultMemoryLimitBytes,
		NetworkDisabled:  true,
		StdinOpen:        true,
		BindReadOnly:     true,
		OutputLimitBytes: DefaultOutputLimitBytes,
	}
}
