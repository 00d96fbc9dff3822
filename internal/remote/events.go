package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"rsiassist/internal/core/model"
)

// TimerUpdateEvent is the name of the push event carrying a full TimerStatus.
const TimerUpdateEvent = "timer-update"

const maxEventSize = 1 << 20

// Subscribe opens the push channel. The returned channel delivers every status in arrival
// order and is closed when ctx is cancelled or the stream ends.
func (client *Client) Subscribe(ctx context.Context) (<-chan model.TimerStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.endpoint("/api/events"), nil)
	if err != nil {
		return nil, fmt.Errorf("subscribe: create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("subscribe: %w", decodeStatusError(resp))
	}

	updates := make(chan model.TimerStatus)
	go func() {
		defer close(updates)
		defer resp.Body.Close()

		reader := newEventReader(resp)
		for {
			event, ok := reader.next()
			if !ok {
				if err := reader.err(); err != nil && ctx.Err() == nil {
					client.logger.Printf("remote: push stream ended: %v", err)
				}
				return
			}
			if event.name != TimerUpdateEvent {
				continue
			}
			var status model.TimerStatus
			if err := json.Unmarshal([]byte(event.data), &status); err != nil {
				client.logger.Printf("remote: decode %s: %v", TimerUpdateEvent, err)
				continue
			}
			select {
			case updates <- status:
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, nil
}

type serverEvent struct {
	name string
	data string
}

type eventReader struct {
	scanner *bufio.Scanner
}

func newEventReader(resp *http.Response) *eventReader {
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 4096), maxEventSize)
	return &eventReader{scanner: scanner}
}

func (reader *eventReader) next() (serverEvent, bool) {
	var event serverEvent
	var data []string
	for reader.scanner.Scan() {
		line := reader.scanner.Text()
		if line == "" {
			if len(data) == 0 && event.name == "" {
				continue
			}
			event.data = strings.Join(data, "\n")
			if event.name == "" {
				event.name = "message"
			}
			return event, true
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			event.name = value
		case "data":
			data = append(data, value)
		}
	}
	return serverEvent{}, false
}

func (reader *eventReader) err() error {
	return reader.scanner.Err()
}
