package sandbox

import (
	"context"

	"go.uber.org/zap"
)

// Runner drives one interpreter invocation inside a provisioned sandbox and
// captures its bounded output. One runner exists per supported language,
// selected at pipeline construction time; the variants differ only in the
// argv handed to the container.
type Runner interface {
	Execute(ctx context.Context, handle *Handle) (Response, error)
}

// InterpreterRunner attaches to the sandbox and invokes the language's
// interpreter on the staged source file.
type InterpreterRunner struct {
	language    string
	command     []string
	workDir     string
	outputLimit int
	logger      *zap.Logger
}

// NewInterpreterRunner builds the runner variant for one language. command
// is the full interpreter argv, e.g. ["python", "code.py"], executed with
// workDir as the working directory.
func NewInterpreterRunner(language string, command []string, workDir string, outputLimit int, logger *zap.Logger) *InterpreterRunner {
	return &InterpreterRunner{
		language:    language,
		command:     command,
		workDir:     workDir,
		outputLimit: outputLimit,
		logger:      logger,
	}
}

// Execute runs the interpreter command and collects stdout and stderr as
// independent streams, each truncated at the configured byte ceiling. The
// call returns once the interpreter exits or the stream is closed; a hung
// process is eventually terminated by the pipeline's teardown kill.
func (r *InterpreterRunner) Execute(ctx context.Context, handle *Handle) (Response, error) {
	stream, err := handle.Runtime.AttachCommand(ctx, handle.ID, r.command, r.workDir)
	if err != nil {
		return Response{}, &ExecError{Err: err}
	}
	defer stream.Close()

	stdout := &cappedBuffer{max: r.outputLimit}
	stderr := &cappedBuffer{max: r.outputLimit}
	if err := stream.Copy(stdout, stderr); err != nil {
		return Response{}, &ExecError{Err: err}
	}

	r.logger.Debug("interpreter finished",
		zap.String("language", r.language),
		zap.String("container_id", handle.ID),
		zap.Int("stdout_len", len(stdout.String())),
		zap.Int("stderr_len", len(stderr.String())))

	return NewResponse(stdout.String(), stderr.String(), r.outputLimit), nil
}
