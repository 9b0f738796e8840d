package apiserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/expercise/expercise-interpreter/config"
	"github.com/expercise/expercise-interpreter/sandbox"
)

// MockInterpreter implements Interpreter for testing
type MockInterpreter struct {
	resp      sandbox.Response
	err       error
	languages []string

	gotLanguage string
	gotCode     string
}

func (m *MockInterpreter) Interpret(_ context.Context, language, code string) (sandbox.Response, error) {
	m.gotLanguage = language
	m.gotCode = code
	return m.resp, m.err
}

func (m *MockInterpreter) Languages() []string {
	return m.languages
}

func newTestServer(t *testing.T, interp *MockInterpreter) *Server {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Transport: "http", HTTPPort: 8080},
	}
	return New(cfg, zaptest.NewLogger(t), interp)
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealthz(t *testing.T) {
	s := newTestServer(t, &MockInterpreter{})
	rec := doRequest(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleLanguages(t *testing.T) {
	s := newTestServer(t, &MockInterpreter{languages: []string{"nodejs", "python"}})
	rec := doRequest(t, s, http.MethodGet, "/languages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"nodejs", "python"}, body["languages"])
}

func TestHandleInterpret(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		interp := &MockInterpreter{resp: sandbox.Response{Stdout: "hello", Stderr: ""}}
		s := newTestServer(t, interp)

		rec := doRequest(t, s, http.MethodPost, "/interpret", map[string]string{
			"language": "python",
			"code":     "print('hello')",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var body interpretResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "hello", body.Stdout)
		assert.Equal(t, "", body.Stderr)
		assert.Empty(t, body.Error)

		assert.Equal(t, "python", interp.gotLanguage)
		assert.Equal(t, "print('hello')", interp.gotCode)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		s := newTestServer(t, &MockInterpreter{})
		req := httptest.NewRequest(http.MethodPost, "/interpret", bytes.NewReader([]byte("not json")))
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MissingFields", func(t *testing.T) {
		s := newTestServer(t, &MockInterpreter{})
		rec := doRequest(t, s, http.MethodPost, "/interpret", map[string]string{"language": "python"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnsupportedLanguage", func(t *testing.T) {
		interp := &MockInterpreter{err: sandbox.ErrUnsupportedLanguage}
		s := newTestServer(t, interp)

		rec := doRequest(t, s, http.MethodPost, "/interpret", map[string]string{
			"language": "cobol",
			"code":     "DISPLAY 'HELLO'.",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MemoryLimitExceeded", func(t *testing.T) {
		interp := &MockInterpreter{
			resp: sandbox.Response{Stdout: "partial"},
			err:  &sandbox.MemoryLimitError{ContainerID: "abc"},
		}
		s := newTestServer(t, interp)

		rec := doRequest(t, s, http.MethodPost, "/interpret", map[string]string{
			"language": "python",
			"code":     "x = bytearray(10**9)",
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var body interpretResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "memory limit exceeded", body.Error)
		assert.Equal(t, "partial", body.Stdout)
	})

	t.Run("ExecutionFailure", func(t *testing.T) {
		interp := &MockInterpreter{err: &sandbox.ExecError{Err: errors.New("stream broken")}}
		s := newTestServer(t, interp)

		rec := doRequest(t, s, http.MethodPost, "/interpret", map[string]string{
			"language": "python",
			"code":     "print('hello')",
		})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "stream broken")
	})

	t.Run("InfrastructureFailure", func(t *testing.T) {
		interp := &MockInterpreter{err: &sandbox.InfraError{Op: "container create", Err: errors.New("daemon down")}}
		s := newTestServer(t, interp)

		rec := doRequest(t, s, http.MethodPost, "/interpret", map[string]string{
			"language": "python",
			"code":     "print('hello')",
		})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.NotContains(t, rec.Body.String(), "daemon down")
	})
}
