package crmapi

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	appintegration "github.com/crmconsole/backend/internal/application/integration"
	"go.uber.org/zap"
)

// EventMappingChanged is the SSE event name of a mapping change.
const EventMappingChanged = "mapping_changed"

type sseEvent struct {
	name string
	data strings.Builder
}

// Watch streams mapping change events until ctx is done or the server closes
// the stream. fn runs on the calling goroutine for each change.
func (c *Client) Watch(ctx context.Context, fn func(appintegration.MappingChange)) error {
	resp, err := c.stream.R().
		SetContext(ctx).
		SetHeader("Accept", "text/event-stream").
		SetDoNotParseResponse(true).
		Get("/integration/mappings/events")
	if err != nil {
		return fmt.Errorf("%w: watch: %v", ErrTransport, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		_, _ = io.Copy(io.Discard, body)
		return &APIError{Status: resp.StatusCode(), Message: "stream rejected"}
	}

	err = readEvents(body, func(name, data string) {
		if name != EventMappingChanged {
			return
		}
		var change appintegration.MappingChange
		if err := json.Unmarshal([]byte(data), &change); err != nil {
			c.logger.Warn("Dropping malformed mapping event", zap.Error(err))
			return
		}
		fn(change)
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// readEvents parses a text/event-stream body, calling emit once per event.
func readEvents(r io.Reader, emit func(name, data string)) error {
	scanner := bufio.NewScanner(r)
	var ev sseEvent
	flush := func() {
		if ev.data.Len() > 0 {
			name := ev.name
			if name == "" {
				name = "message"
			}
			emit(name, ev.data.String())
		}
		ev.name = ""
		ev.data.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			ev.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if ev.data.Len() > 0 {
				ev.data.WriteByte('\n')
			}
			ev.data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	flush()
	return scanner.Err()
}
