package sandbox

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Pipeline owns the full lifecycle of one sandboxed execution: provision a
// container for the staged source, run the interpreter, and tear the
// container down again on every exit path. A pipeline is bound to one image
// and one runner variant; concurrent requests run through independent
// containers with no shared mutable state.
type Pipeline struct {
	runtime ContainerRuntime
	runner  Runner
	image   string
	policy  ResourcePolicy
	logger  *zap.Logger
}

// NewPipeline pulls the interpreter image once and returns a pipeline bound
// to it. A pull failure is fatal: no requests are accepted for an image the
// runtime cannot provide.
func NewPipeline(ctx context.Context, runtime ContainerRuntime, runner Runner, imageRef string, policy ResourcePolicy, logger *zap.Logger) (*Pipeline, error) {
	if err := runtime.PullImage(ctx, imageRef); err != nil {
		return nil, &InfraError{Op: "image pull", Err: err}
	}

	return &Pipeline{
		runtime: runtime,
		runner:  runner,
		image:   imageRef,
		policy:  policy,
		logger:  logger,
	}, nil
}

// Run executes the source staged at hostPath, visible inside the sandbox at
// containerPath. The returned Response is always a value: stdout and stderr
// are present, possibly empty, even when err is non-nil. When teardown fails
// after a successful execution the captured output is returned alongside the
// teardown error rather than discarded.
func (p *Pipeline) Run(ctx context.Context, hostPath, containerPath string) (resp Response, err error) {
	handle, provErr := p.provision(ctx, hostPath, containerPath)
	if provErr != nil {
		return Response{}, provErr
	}

	defer func() {
		// Teardown runs on every exit path, detached from request
		// cancellation so cleanup survives a canceled context.
		tdErr := p.teardown(context.WithoutCancel(ctx), handle)
		if tdErr == nil {
			return
		}
		// A memory-limit kill is the truthful classification even when the
		// runner also failed: the stream breaks when the container dies.
		if IsMemoryLimit(tdErr) || err == nil {
			err = tdErr
		}
	}()

	return p.runner.Execute(ctx, handle)
}

// provision builds the isolation configuration and asks the runtime to
// create and start the container. Creation warnings are logged, not treated
// as errors.
func (p *Pipeline) provision(ctx context.Context, hostPath, containerPath string) (*Handle, error) {
	spec := ContainerSpec{
		Image:            p.image,
		HostPath:         hostPath,
		ContainerPath:    containerPath,
		BindReadOnly:     p.policy.BindReadOnly,
		MemoryLimitBytes: p.policy.MemoryLimitBytes,
		NetworkDisabled:  p.policy.NetworkDisabled,
		StdinOpen:        p.policy.StdinOpen,
		WorkingDir:       containerPath,
	}

	created, err := p.runtime.CreateContainer(ctx, spec)
	if err != nil {
		return nil, &InfraError{Op: "container create", Err: err}
	}

	for _, warning := range created.Warnings {
		p.logger.Warn("container creation warning",
			zap.String("container_id", created.ID),
			zap.String("warning", warning))
	}

	if err := p.runtime.StartContainer(ctx, created.ID); err != nil {
		// Best effort: do not leak the created but never-started container.
		if rmErr := p.runtime.RemoveContainer(ctx, created.ID); rmErr != nil {
			p.logger.Error("failed to remove unstarted container",
				zap.String("container_id", created.ID), zap.Error(rmErr))
		}
		return nil, &InfraError{Op: "container start", Err: err}
	}

	return &Handle{ID: created.ID, Runtime: p.runtime}, nil
}

// teardown force-stops the container, checks its final state for a memory
// kill, and removes it. The three steps run strictly in that order: the
// inspect must observe the killed state before remove destroys it.
func (p *Pipeline) teardown(ctx context.Context, handle *Handle) error {
	p.logger.Debug("killing container", zap.String("container_id", handle.ID))
	if err := p.runtime.KillContainer(ctx, handle.ID); err != nil {
		return &InfraError{Op: "container kill", Err: err}
	}

	stateErr := p.checkExecutionState(ctx, handle.ID)

	p.logger.Debug("removing container", zap.String("container_id", handle.ID))
	if err := p.runtime.RemoveContainer(ctx, handle.ID); err != nil {
		if stateErr != nil {
			// The state classification is the meaningful outcome; the remove
			// failure must not mask it.
			p.logger.Error("failed to remove container",
				zap.String("container_id", handle.ID), zap.Error(err))
			return stateErr
		}
		return &InfraError{Op: "container remove", Err: err}
	}

	return stateErr
}

func (p *Pipeline) checkExecutionState(ctx context.Context, containerID string) error {
	state, err := p.runtime.InspectContainer(ctx, containerID)
	if err != nil {
		return &InfraError{Op: "container inspect", Err: err}
	}
	if !state.Known {
		return &InfraError{Op: "container inspect", Err: errors.New("final container state unknown")}
	}
	if state.OOMKilled {
		return &MemoryLimitError{ContainerID: containerID}
	}

	p.logger.Info("interpreter execution completed", zap.String("container_id", containerID))
	return nil
}
