package agent

import (
	"strings"

	"github.com/google/uuid"
)

// toolCallAccumulator merges fragmented tool-call deltas. Providers address
// each logical call by a zero-based stream index and may interleave argument
// fragments for several calls within one turn.
type toolCallAccumulator struct {
	calls map[int]*pendingCall
	order []int // indices in order of first appearance
}

type pendingCall struct {
	id   string
	name string
	args strings.Builder
}

func newToolCallAccumulator() *toolCallAccumulator {
	return &toolCallAccumulator{calls: make(map[int]*pendingCall)}
}

// Add merges one delta. The first id and name seen for an index are kept;
// argument fragments append in arrival order.
func (a *toolCallAccumulator) Add(d ToolCallDelta) {
	call, ok := a.calls[d.Index]
	if !ok {
		call = &pendingCall{}
		a.calls[d.Index] = call
		a.order = append(a.order, d.Index)
	}
	if call.id == "" && d.ID != "" {
		call.id = d.ID
	}
	if call.name == "" && d.Name != "" {
		call.name = d.Name
	}
	if d.Args != "" {
		call.args.WriteString(d.Args)
	}
}

// Finalize returns the completed calls ordered by first appearance of each
// index, not by index value. A call without a model-supplied id gets a
// generated one. A call without a name is reported as "unknown" so the
// executor fails it explicitly instead of dropping it. A call with no
// argument fragments gets an empty JSON object, never empty text.
func (a *toolCallAccumulator) Finalize() []ToolCall {
	var calls []ToolCall
	for _, idx := range a.order {
		p := a.calls[idx]

		id := p.id
		if id == "" {
			id = uuid.New().String()
		}
		name := p.name
		if name == "" {
			name = "unknown"
		}
		args := p.args.String()
		if args == "" {
			args = "{}"
		}

		calls = append(calls, ToolCall{
			ID:       id,
			Type:     "function",
			Function: FunctionCall{Name: name, Arguments: args},
		})
	}
	return calls
}
