package serverutils

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// SSEEvent is one server-sent event frame. The event name travels
// inside the JSON payload rather than as an SSE "event:" field so
// clients can parse a single data stream.
type SSEEvent struct {
	Event string
	Data  map[string]interface{}
}

// FormatSSEEvent renders one frame in text/event-stream framing.
func FormatSSEEvent(event string, data map[string]interface{}) string {
	payload := map[string]interface{}{"event": event}
	for k, v := range data {
		payload[k] = v
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte(fmt.Sprintf(`{"event":%q}`, event))
	}
	return fmt.Sprintf("data: %s\n\n", raw)
}

// StreamSSE switches the response to a server-sent event stream and
// runs produce with a channel to push frames into. The stream closes
// when produce returns and the channel is drained.
func StreamSSE(ctx *fiber.Ctx, produce func(events chan<- SSEEvent)) error {
	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	events := make(chan SSEEvent, 16)
	go func() {
		defer close(events)
		produce(events)
	}()

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		pumpSSE(w, events)
	}))
	return nil
}

// sseStream is the writer half of a stream; *bufio.Writer satisfies it.
type sseStream interface {
	io.StringWriter
	Flush() error
}

// pumpSSE copies frames to the client until events closes. A failed
// write means the client disconnected; the remaining frames are then
// drained so the producer never blocks sending into a dead stream.
func pumpSSE(w sseStream, events <-chan SSEEvent) {
	for ev := range events {
		if _, err := w.WriteString(FormatSSEEvent(ev.Event, ev.Data)); err != nil {
			break
		}
		if err := w.Flush(); err != nil {
			break
		}
	}
	for range events {
	}
}
