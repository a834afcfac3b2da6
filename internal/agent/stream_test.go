package agent

import (
	"io"
	"strings"
	"testing"
)

func decoderFor(input string) *streamDecoder {
	return newStreamDecoder(io.NopCloser(strings.NewReader(input)))
}

// drain collects every event until io.EOF.
func drain(t *testing.T, d *streamDecoder) []StreamEvent {
	t.Helper()
	var events []StreamEvent
	for {
		ev, err := d.Recv()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("Recv failed: %v", err)
		}
		events = append(events, ev)
	}
}

func TestStreamDecodesContent(t *testing.T) {
	d := decoderFor("data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n" +
		"data: [DONE]\n")

	events := drain(t, d)
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d: %+v", len(events), events)
	}
	if events[0].Kind != EventContent || events[0].Text != "Hel" {
		t.Errorf("First event wrong: %+v", events[0])
	}
	if events[1].Kind != EventContent || events[1].Text != "lo" {
		t.Errorf("Second event wrong: %+v", events[1])
	}
	if events[2].Kind != EventDone {
		t.Errorf("Final event must be done, got %+v", events[2])
	}
}

func TestStreamRecvAfterDone(t *testing.T) {
	d := decoderFor("data: [DONE]\n")
	drain(t, d)
	if _, err := d.Recv(); err != io.EOF {
		t.Errorf("Recv after done must keep returning io.EOF, got %v", err)
	}
}

func TestStreamDecodesToolCallDeltas(t *testing.T) {
	d := decoderFor("data: {\"choices\":[{\"delta\":{\"tool_calls\":[" +
		"{\"index\":0,\"id\":\"call_1\",\"function\":{\"name\":\"read\",\"arguments\":\"{\\\"pa\"}}]}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[" +
		"{\"index\":0,\"function\":{\"arguments\":\"th\\\": \\\"a\\\"}\"}}]}}]}\n" +
		"data: [DONE]\n")

	events := drain(t, d)
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	first := events[0]
	if first.Kind != EventToolCall || first.Delta.ID != "call_1" || first.Delta.Name != "read" {
		t.Errorf("First delta wrong: %+v", first.Delta)
	}
	second := events[1]
	if second.Delta.Index != 0 || second.Delta.ID != "" || second.Delta.Args != `th": "a"}` {
		t.Errorf("Second delta wrong: %+v", second.Delta)
	}
}

func TestStreamContentBeforeToolCallsInChunk(t *testing.T) {
	d := decoderFor("data: {\"choices\":[{\"delta\":{\"content\":\"ok\",\"tool_calls\":[" +
		"{\"index\":0,\"id\":\"c\",\"function\":{\"name\":\"bash\",\"arguments\":\"{}\"}}]}}]}\n" +
		"data: [DONE]\n")

	events := drain(t, d)
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	if events[0].Kind != EventContent || events[1].Kind != EventToolCall {
		t.Errorf("Content must precede tool deltas from the same chunk: %+v", events)
	}
}

func TestStreamSkipsMalformedChunks(t *testing.T) {
	d := decoderFor("data: {not json at all\n" +
		"\n" +
		": keepalive comment\n" +
		"event: ping\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n" +
		"data: [DONE]\n")

	events := drain(t, d)
	if len(events) != 2 {
		t.Fatalf("Expected malformed lines skipped, got %d events: %+v", len(events), events)
	}
	if events[0].Text != "ok" {
		t.Errorf("Valid chunk after garbage must still decode, got %+v", events[0])
	}
}

func TestStreamStopsAtSentinel(t *testing.T) {
	d := decoderFor("data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n" +
		"data: [DONE]\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"never\"}}]}\n")

	events := drain(t, d)
	for _, ev := range events {
		if ev.Text == "never" {
			t.Fatal("Chunks after the sentinel must not be decoded")
		}
	}
	if events[len(events)-1].Kind != EventDone {
		t.Errorf("Stream must end with done, got %+v", events)
	}
}

func TestStreamEOFWithoutSentinel(t *testing.T) {
	d := decoderFor("data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n")

	events := drain(t, d)
	if len(events) != 2 {
		t.Fatalf("Expected content plus synthesized done, got %d", len(events))
	}
	if events[1].Kind != EventDone {
		t.Errorf("EOF without sentinel must still yield done, got %+v", events[1])
	}
}

func TestStreamCapturesUsage(t *testing.T) {
	d := decoderFor("data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n" +
		"data: {\"choices\":[],\"usage\":{\"prompt_tokens\":10,\"completion_tokens\":5,\"total_tokens\":15}}\n" +
		"data: [DONE]\n")

	drain(t, d)
	usage := d.Usage()
	if usage == nil {
		t.Fatal("Usage chunk must be captured")
	}
	if usage.PromptTokens != 10 || usage.CompletionTokens != 5 || usage.TotalTokens != 15 {
		t.Errorf("Usage totals wrong: %+v", usage)
	}
}

func TestStreamEmptyDeltaProducesNoEvent(t *testing.T) {
	d := decoderFor("data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n" +
		"data: [DONE]\n")

	events := drain(t, d)
	if len(events) != 1 || events[0].Kind != EventDone {
		t.Errorf("Empty delta must produce nothing before done: %+v", events)
	}
}
