package sandbox

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/expercise/expercise-interpreter/config"
)

// Service is the submission entry point: it stages the submitted source on
// the host, picks the pipeline for the requested language, and returns the
// bounded output. One pipeline exists per configured language, all sharing
// one runtime client.
type Service struct {
	pipelines map[string]*Pipeline
	languages map[string]config.Language
	runtime   ContainerRuntime
	mountPath string
	fs        FileSystem
	logger    *zap.Logger
}

// ServiceOption defines a functional option for Service
type ServiceOption func(*Service)

// WithFileSystem sets the FileSystem used for host-side staging
func WithFileSystem(fs FileSystem) ServiceOption {
	return func(s *Service) {
		s.fs = fs
	}
}

// NewService builds one pipeline per configured language. Each pipeline
// pulls its image immediately, so an unavailable image fails construction
// before any request is accepted.
func NewService(logger *zap.Logger, cfg *config.Config, runtime ContainerRuntime, opts ...ServiceOption) (*Service, error) {
	policy := ResourcePolicy{
		MemoryLimitBytes: cfg.MemoryLimitBytes(),
		NetworkDisabled:  true,
		StdinOpen:        cfg.Sandbox.StdinOpen,
		BindReadOnly:     true,
		OutputLimitBytes: cfg.Sandbox.OutputLimitBytes,
	}

	s := &Service{
		pipelines: make(map[string]*Pipeline, len(cfg.Languages)),
		languages: cfg.Languages,
		runtime:   runtime,
		mountPath: cfg.Sandbox.MountPath,
		fs:        RealFileSystem{},
		logger:    logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	ctx := context.Background()
	for name, lang := range cfg.Languages {
		runner := NewInterpreterRunner(name, lang.Command, cfg.Sandbox.MountPath, policy.OutputLimitBytes, logger)
		pipeline, err := NewPipeline(ctx, runtime, runner, lang.Image, policy, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing %s pipeline: %w", name, err)
		}
		s.pipelines[name] = pipeline

		logger.Info("interpreter pipeline ready",
			zap.String("language", name),
			zap.String("image", lang.Image),
			zap.Int64("memory_limit_bytes", policy.MemoryLimitBytes),
			zap.Int("output_limit_bytes", policy.OutputLimitBytes))
	}

	return s, nil
}

// NewFromConfig creates the runtime client from configuration and builds the
// service on top of it.
func NewFromConfig(logger *zap.Logger, cfg *config.Config) (*Service, error) {
	runtime, err := NewDockerRuntime(cfg.Sandbox.Host)
	if err != nil {
		return nil, &InfraError{Op: "runtime client setup", Err: err}
	}
	return NewService(logger, cfg, runtime)
}

// Languages returns the configured language names, sorted.
func (s *Service) Languages() []string {
	names := make([]string, 0, len(s.pipelines))
	for name := range s.pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Interpret runs the submitted source through the language's pipeline. The
// source is staged in a per-request temp directory that is removed before
// Interpret returns.
func (s *Service) Interpret(ctx context.Context, language, code string) (Response, error) {
	pipeline, ok := s.pipelines[language]
	if !ok {
		return Response{}, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}

	dir, err := stageSource(s.fs, s.languages[language].FileName, code)
	if err != nil {
		return Response{}, err
	}
	defer func() {
		if rmErr := s.fs.RemoveAll(dir); rmErr != nil {
			s.logger.Error("failed to remove staging directory", zap.String("path", dir), zap.Error(rmErr))
		}
	}()

	return pipeline.Run(ctx, dir, s.mountPath)
}

// Close releases the runtime client if it owns a connection.
func (s *Service) Close() error {
	if closer, ok := s.runtime.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
