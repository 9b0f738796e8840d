package sandbox

import (
	"bytes"
	"strings"
)

// Response carries the captured interpreter output. Both fields are always
// present, possibly empty, and each is capped at the pipeline's configured
// byte ceiling.
type Response struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// NewResponse caps both streams at limit bytes and strips leading and
// trailing whitespace. Truncation happens before trimming so the returned
// strings never exceed the ceiling.
func NewResponse(stdout, stderr string, limit int) Response {
	return Response{
		Stdout: strings.TrimSpace(truncate(stdout, limit)),
		Stderr: strings.TrimSpace(truncate(stderr, limit)),
	}
}

func truncate(s string, limit int) string {
	if limit >= 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

// cappedBuffer stores at most max bytes and silently discards the rest, so
// an interpreter producing runaway output cannot grow the host process.
// Write never fails and always reports the full length as consumed.
type cappedBuffer struct {
	buf bytes.Buffer
	max int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if remaining := b.max - b.buf.Len(); remaining > 0 {
		if len(p) > remaining {
			b.buf.Write(p[:remaining])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string { return b.buf.String() }
