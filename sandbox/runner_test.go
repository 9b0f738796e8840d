package sandbox

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockStream implements AttachedStream for testing
type MockStream struct {
	stdout  string
	stderr  string
	copyErr error
	closed  bool
}

func (s *MockStream) Copy(stdout, stderr io.Writer) error {
	if _, err := io.Copy(stdout, strings.NewReader(s.stdout)); err != nil {
		return err
	}
	if _, err := io.Copy(stderr, strings.NewReader(s.stderr)); err != nil {
		return err
	}
	return s.copyErr
}

func (s *MockStream) Close() error {
	s.closed = true
	return nil
}

func testHandle(runtime ContainerRuntime) *Handle {
	return &Handle{ID: "test-container", Runtime: runtime}
}

func TestInterpreterRunnerCollectsOutput(t *testing.T) {
	stream := &MockStream{stdout: "hello\n", stderr: ""}
	runtime := newMockRuntime()
	runtime.stream = stream

	runner := NewInterpreterRunner("python", []string{"python", "code.py"}, "/code", 1024, zaptest.NewLogger(t))
	resp, err := runner.Execute(context.Background(), testHandle(runtime))
	require.NoError(t, err)

	assert.Equal(t, "hello", resp.Stdout)
	assert.Equal(t, "", resp.Stderr)
	assert.True(t, stream.closed)
}

func TestInterpreterRunnerBoundsEachStreamIndependently(t *testing.T) {
	stream := &MockStream{
		stdout: strings.Repeat("a", 5000),
		stderr: strings.Repeat("b", 12),
	}
	runtime := newMockRuntime()
	runtime.stream = stream

	runner := NewInterpreterRunner("python", []string{"python", "code.py"}, "/code", 1024, zaptest.NewLogger(t))
	resp, err := runner.Execute(context.Background(), testHandle(runtime))
	require.NoError(t, err)

	assert.Len(t, resp.Stdout, 1024)
	assert.Len(t, resp.Stderr, 12)
}

func TestInterpreterRunnerAttachFailure(t *testing.T) {
	runtime := newMockRuntime()
	runtime.attachErr = errors.New("attach refused")

	runner := NewInterpreterRunner("nodejs", []string{"node", "code.js"}, "/code", 1024, zaptest.NewLogger(t))
	_, err := runner.Execute(context.Background(), testHandle(runtime))
	require.Error(t, err)
	assert.True(t, IsExec(err))
}

func TestInterpreterRunnerCopyFailure(t *testing.T) {
	stream := &MockStream{stdout: "partial", copyErr: errors.New("connection reset")}
	runtime := newMockRuntime()
	runtime.stream = stream

	runner := NewInterpreterRunner("ruby", []string{"ruby", "code.rb"}, "/code", 1024, zaptest.NewLogger(t))
	_, err := runner.Execute(context.Background(), testHandle(runtime))
	require.Error(t, err)
	assert.True(t, IsExec(err))
	assert.True(t, stream.closed)
}
