package apiclient

import (
	"encoding/json"
	"strings"
)

const streamDoneSentinel = "[DONE]"

// ParseEventStream converts a fully buffered text/event-stream body into the
// ordered list of JSON data events it carries. It is a pure function:
// deterministic, no state across calls.
//
// Events are separated by a blank line. Within one event, every "data:" line
// contributes; multiple data lines are joined with a newline per the
// event-stream multi-line-data rule. The "[DONE]" sentinel terminates the
// stream and is not itself an event. Blocks with no data line (comments,
// heartbeats) and blocks whose payload is not valid JSON are skipped rather
// than failing the whole call; stream aggregation is best-effort.
func ParseEventStream(raw []byte) []json.RawMessage {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	events := make([]json.RawMessage, 0)
	for _, block := range strings.Split(text, "\n\n") {
		var parts []string
		for _, line := range strings.Split(block, "\n") {
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			parts = append(parts, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
		if parts == nil {
			continue
		}

		payload := strings.Join(parts, "\n")
		if payload == streamDoneSentinel {
			break
		}

		var event json.RawMessage
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events
}
