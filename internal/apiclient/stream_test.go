package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventStream_BasicEvents(t *testing.T) {
	raw := "data: {\"a\":1}\n\ndata: {\"a\":2}\n\ndata: [DONE]\n\n"

	events := ParseEventStream([]byte(raw))

	require.Len(t, events, 2)
	assert.JSONEq(t, `{"a":1}`, string(events[0]))
	assert.JSONEq(t, `{"a":2}`, string(events[1]))
}

func TestParseEventStream_StopsAtDone(t *testing.T) {
	raw := "data: {\"a\":1}\n\ndata: [DONE]\n\ndata: {\"a\":2}\n\n"

	events := ParseEventStream([]byte(raw))

	require.Len(t, events, 1)
	assert.JSONEq(t, `{"a":1}`, string(events[0]))
}

func TestParseEventStream_DropsMalformedBlocks(t *testing.T) {
	raw := "data: {\"a\":1}\n\ndata: {not json\n\ndata: {\"a\":3}\n\ndata: [DONE]\n\n"

	events := ParseEventStream([]byte(raw))

	require.Len(t, events, 2)
	assert.JSONEq(t, `{"a":1}`, string(events[0]))
	assert.JSONEq(t, `{"a":3}`, string(events[1]))
}

func TestParseEventStream_SkipsBlocksWithoutData(t *testing.T) {
	raw := ": heartbeat\n\nevent: ping\n\ndata: {\"a\":1}\n\ndata: [DONE]\n\n"

	events := ParseEventStream([]byte(raw))

	require.Len(t, events, 1)
}

func TestParseEventStream_JoinsMultiLineData(t *testing.T) {
	// Two data lines in one block join with a newline, which is legal
	// whitespace inside a JSON array.
	raw := "data: [1,\ndata: 2]\n\ndata: [DONE]\n\n"

	events := ParseEventStream([]byte(raw))

	require.Len(t, events, 1)
	assert.JSONEq(t, `[1,2]`, string(events[0]))
}

func TestParseEventStream_NormalizesCRLF(t *testing.T) {
	raw := "data: {\"a\":1}\r\n\r\ndata: [DONE]\r\n\r\n"

	events := ParseEventStream([]byte(raw))

	require.Len(t, events, 1)
	assert.JSONEq(t, `{"a":1}`, string(events[0]))
}

func TestParseEventStream_EmptyInput(t *testing.T) {
	events := ParseEventStream(nil)

	require.NotNil(t, events)
	assert.Empty(t, events)
}
