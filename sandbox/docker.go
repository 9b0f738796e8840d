package sandbox

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
)

// DockerRuntime implements ContainerRuntime against a Docker-compatible
// daemon (Docker itself, or Podman's compatibility socket). The underlying
// client is stateless from the pipeline's perspective and is shared across
// requests.
type DockerRuntime struct {
	cli *client.Client
}

// NewDockerRuntime creates a runtime client. An empty host uses the standard
// environment discovery (DOCKER_HOST and friends).
func NewDockerRuntime(host string) (*DockerRuntime, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create container runtime client: %w", err)
	}

	return &DockerRuntime{cli: cli}, nil
}

// NewDockerRuntimeWithClient wraps an existing client. Useful when sharing a
// client across services.
func NewDockerRuntimeWithClient(cli *client.Client) (*DockerRuntime, error) {
	if cli == nil {
		return nil, fmt.Errorf("container runtime client cannot be nil")
	}
	return &DockerRuntime{cli: cli}, nil
}

// PullImage fetches the image, draining the progress stream to completion.
func (r *DockerRuntime) PullImage(ctx context.Context, ref string) error {
	reader, err := r.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	defer reader.Close()

	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}

	return nil
}

// CreateContainer translates the spec into container and host configuration.
// Memory and memory+swap are set to the same value so swap cannot stretch
// the ceiling.
func (r *DockerRuntime) CreateContainer(ctx context.Context, spec ContainerSpec) (CreatedContainer, error) {
	containerCfg := &container.Config{
		Image:           spec.Image,
		WorkingDir:      spec.WorkingDir,
		OpenStdin:       spec.StdinOpen,
		NetworkDisabled: spec.NetworkDisabled,
		Tty:             false,
	}

	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{{
			Type:     mount.TypeBind,
			Source:   spec.HostPath,
			Target:   spec.ContainerPath,
			ReadOnly: spec.BindReadOnly,
		}},
		Resources: container.Resources{
			Memory:     spec.MemoryLimitBytes,
			MemorySwap: spec.MemoryLimitBytes,
		},
	}
	if spec.NetworkDisabled {
		hostCfg.NetworkMode = "none"
	}

	resp, err := r.cli.ContainerCreate(ctx, containerCfg, hostCfg, &network.NetworkingConfig{}, nil, "")
	if err != nil {
		return CreatedContainer{}, err
	}

	return CreatedContainer{ID: resp.ID, Warnings: resp.Warnings}, nil
}

func (r *DockerRuntime) StartContainer(ctx context.Context, containerID string) error {
	return r.cli.ContainerStart(ctx, containerID, container.StartOptions{})
}

// AttachCommand starts cmd inside the container and returns its output
// stream. The caller owns the stream and must close it.
func (r *DockerRuntime) AttachCommand(ctx context.Context, containerID string, cmd []string, workDir string) (AttachedStream, error) {
	execResp, err := r.cli.ContainerExecCreate(ctx, containerID, container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
		WorkingDir:   workDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create exec: %w", err)
	}

	attachResp, err := r.cli.ContainerExecAttach(ctx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to attach to exec: %w", err)
	}

	return &dockerStream{resp: attachResp}, nil
}

// dockerStream demultiplexes the hijacked connection's combined stream.
type dockerStream struct {
	resp types.HijackedResponse
}

func (s *dockerStream) Copy(stdout, stderr io.Writer) error {
	_, err := stdcopy.StdCopy(stdout, stderr, s.resp.Reader)
	return err
}

func (s *dockerStream) Close() error {
	s.resp.Close()
	return nil
}

// KillContainer force-stops the container. A container that already exited
// answers with a conflict, which is tolerated.
func (r *DockerRuntime) KillContainer(ctx context.Context, containerID string) error {
	err := r.cli.ContainerKill(ctx, containerID, "KILL")
	if err == nil || errdefs.IsConflict(err) || errdefs.IsNotFound(err) {
		return nil
	}
	return err
}

func (r *DockerRuntime) InspectContainer(ctx context.Context, containerID string) (ContainerState, error) {
	info, err := r.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return ContainerState{}, err
	}
	if info.State == nil {
		return ContainerState{}, nil
	}
	return ContainerState{Known: true, OOMKilled: info.State.OOMKilled}, nil
}

// RemoveContainer deletes the container and its writable layer.
func (r *DockerRuntime) RemoveContainer(ctx context.Context, containerID string) error {
	return r.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force:         true,
		RemoveVolumes: true,
	})
}

// Close releases the client connection.
func (r *DockerRuntime) Close() error {
	return r.cli.Close()
}
