package sandbox

import (
	"context"
	"io"
)

// ContainerSpec describes the isolated environment for a single execution:
// one read-only bind mount carrying the staged source, a hard memory
// ceiling, and no network.
type ContainerSpec struct {
	Image            string
	HostPath         string
	ContainerPath    string
	BindReadOnly     bool
	MemoryLimitBytes int64
	NetworkDisabled  bool
	StdinOpen        bool
	WorkingDir       string
}

// CreatedContainer is the runtime's answer to a create request. Warnings are
// non-fatal and are surfaced as log events only.
type CreatedContainer struct {
	ID       string
	Warnings []string
}

// ContainerState is the final inspected state of a container. Known is false
// when the runtime could not report a state at all.
type ContainerState struct {
	Known     bool
	OOMKilled bool
}

// AttachedStream is a demultiplexed view of a command's stdout and stderr.
type AttachedStream interface {
	// Copy writes the two streams into the given writers and blocks until
	// the command exits or the stream is closed.
	Copy(stdout, stderr io.Writer) error
	Close() error
}

// ContainerRuntime is the capability surface the pipeline needs from a
// container daemon. Implementations may share one client connection across
// requests; all methods are blocking calls to the daemon.
type ContainerRuntime interface {
	PullImage(ctx context.Context, image string) error
	CreateContainer(ctx context.Context, spec ContainerSpec) (CreatedContainer, error)
	StartContainer(ctx context.Context, containerID string) error
	AttachCommand(ctx context.Context, containerID string, cmd []string, workDir string) (AttachedStream, error)
	// KillContainer force-stops the container. Killing an already exited
	// container is not an error.
	KillContainer(ctx context.Context, containerID string) error
	InspectContainer(ctx context.Context, containerID string) (ContainerState, error)
	RemoveContainer(ctx context.Context, containerID string) error
}

// Handle pairs a created container with the runtime that owns it. A handle
// lives for exactly one request and is destroyed before the pipeline
// returns.
type Handle struct {
	ID      string
	Runtime ContainerRuntime
}
