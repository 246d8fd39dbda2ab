package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSSEEvent(t *testing.T) {
	frame := FormatSSEEvent("tool_call", map[string]interface{}{
		"tool_name": "search_canvas",
	})

	require.True(t, strings.HasPrefix(frame, "data: "))
	require.True(t, strings.HasSuffix(frame, "\n\n"))

	var payload map[string]interface{}
	raw := strings.TrimSuffix(strings.TrimPrefix(frame, "data: "), "\n\n")
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Equal(t, "tool_call", payload["event"])
	assert.Equal(t, "search_canvas", payload["tool_name"])
}

func TestFormatSSEEventNilData(t *testing.T) {
	frame := FormatSSEEvent("started", nil)

	var payload map[string]interface{}
	raw := strings.TrimSuffix(strings.TrimPrefix(frame, "data: "), "\n\n")
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Equal(t, "started", payload["event"])
	assert.Len(t, payload, 1)
}

// brokenStream accepts a few frames and then fails every write, like a
// client that disconnected mid-stream.
type brokenStream struct {
	frames    []string
	failAfter int
}

func (s *brokenStream) WriteString(p string) (int, error) {
	if len(s.frames) >= s.failAfter {
		return 0, errors.New("connection reset")
	}
	s.frames = append(s.frames, p)
	return len(p), nil
}

func (s *brokenStream) Flush() error { return nil }

func TestPumpSSEWritesAllFrames(t *testing.T) {
	events := make(chan SSEEvent, 4)
	events <- SSEEvent{Event: "started", Data: nil}
	events <- SSEEvent{Event: "completed", Data: map[string]interface{}{"message": "done"}}
	close(events)

	w := &brokenStream{failAfter: 100}
	pumpSSE(w, events)

	require.Len(t, w.frames, 2)
	assert.Contains(t, w.frames[0], `"started"`)
	assert.Contains(t, w.frames[1], `"completed"`)
}

func TestPumpSSEDrainsAfterClientDisconnect(t *testing.T) {
	events := make(chan SSEEvent, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(events)
		// More frames than the channel buffers, as a long tool-calling
		// run produces.
		for i := 0; i < 40; i++ {
			events <- SSEEvent{Event: "tool_call", Data: map[string]interface{}{
				"tool_name": fmt.Sprintf("tool_%d", i),
			}}
		}
	}()

	pumpSSE(&brokenStream{failAfter: 2}, events)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("producer still blocked after the client disconnected")
	}
}
