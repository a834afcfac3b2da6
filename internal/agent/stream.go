package agent

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tara-vision/taragent/internal/storage"
)

const (
	ssePrefix = "data: "
	sseDone   = "[DONE]"
)

// chatStream POSTs a streaming chat completion and returns a decoder over
// the response body. A non-2xx status is a transport error for the turn.
func chatStream(ctx context.Context, client *http.Client, baseURL, apiKey string, req chatRequest) (*streamDecoder, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := strings.TrimSuffix(baseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("LLM API error (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return newStreamDecoder(resp.Body), nil
}

// streamDecoder parses the SSE lines of a chat completion response into
// StreamEvents. It is a forward-only sequence: call Recv until io.EOF.
// A [DONE] sentinel or end of input yields one final EventDone so buffered
// filter and accumulator state can be finalized; input after the sentinel
// is never read.
type streamDecoder struct {
	reader *bufio.Reader
	body   io.ReadCloser
	queue  []StreamEvent
	done   bool
	usage  *storage.TokenUsage
}

func newStreamDecoder(body io.ReadCloser) *streamDecoder {
	return &streamDecoder{
		reader: bufio.NewReader(body),
		body:   body,
	}
}

// Recv returns the next event, or io.EOF after EventDone was delivered.
func (d *streamDecoder) Recv() (StreamEvent, error) {
	for {
		if len(d.queue) > 0 {
			ev := d.queue[0]
			d.queue = d.queue[1:]
			if ev.Kind == EventDone {
				d.done = true
			}
			return ev, nil
		}
		if d.done {
			return StreamEvent{}, io.EOF
		}

		line, err := d.reader.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				// Stream ended without a sentinel; still signal completion.
				d.queue = append(d.queue, StreamEvent{Kind: EventDone})
				continue
			}
			d.done = true
			return StreamEvent{}, fmt.Errorf("stream read failed: %w", err)
		}

		d.decodeLine(strings.TrimSpace(line))
	}
}

// decodeLine parses one SSE line and enqueues its events. Blank lines, lines
// without the event marker, and malformed payloads are skipped: one corrupt
// chunk must not abort an in-progress stream.
func (d *streamDecoder) decodeLine(line string) {
	if !strings.HasPrefix(line, ssePrefix) {
		return
	}
	payload := strings.TrimSpace(strings.TrimPrefix(line, ssePrefix))
	if payload == sseDone {
		d.queue = append(d.queue, StreamEvent{Kind: EventDone})
		return
	}

	var chunk streamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return
	}

	if chunk.Usage != nil {
		d.usage = chunk.Usage
	}
	if len(chunk.Choices) == 0 {
		return
	}

	delta := chunk.Choices[0].Delta
	if delta.Content != "" {
		d.queue = append(d.queue, StreamEvent{Kind: EventContent, Text: delta.Content})
	}
	for _, tc := range delta.ToolCalls {
		d.queue = append(d.queue, StreamEvent{Kind: EventToolCall, Delta: ToolCallDelta{
			Index: tc.Index,
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Args:  tc.Function.Arguments,
		}})
	}
}

// Usage returns token usage reported by the server, if any chunk carried it.
func (d *streamDecoder) Usage() *storage.TokenUsage {
	return d.usage
}

// Close releases the underlying response body.
func (d *streamDecoder) Close() error {
	return d.body.Close()
}
