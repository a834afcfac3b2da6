package agent

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// ThinkFilter hides <think> reasoning blocks from live display while keeping
// the full text for the conversation transcript. Content may arrive split at
// arbitrary points; the concatenation of Process return values (plus a final
// Flush) is the display stream, with suppressed sections and their markers
// removed. Already-flushed text is never re-emitted.
type ThinkFilter struct {
	pending string // partial open-marker match not yet committed either way
	inThink bool
	tail    string // trailing bytes inside a think block, for close detection
	full    strings.Builder
}

// NewThinkFilter creates a filter with empty state.
func NewThinkFilter() *ThinkFilter {
	return &ThinkFilter{}
}

// Process consumes one chunk of streamed content and returns the portion
// that is safe to display now.
func (f *ThinkFilter) Process(chunk string) string {
	f.full.WriteString(chunk)

	var display strings.Builder
	for _, r := range chunk {
		if f.inThink {
			f.tail += string(r)
			if strings.HasSuffix(f.tail, thinkClose) {
				f.inThink = false
				f.tail = ""
			} else if len(f.tail) > len(thinkClose) {
				f.tail = f.tail[len(f.tail)-len(thinkClose):]
			}
			continue
		}

		buf := f.pending + string(r)
		f.pending = ""

		// A failed partial match is flushed from the front one byte at a
		// time, so an open marker can still begin inside it.
		for buf != "" && !strings.HasPrefix(thinkOpen, buf) {
			display.WriteString(buf[:1])
			buf = buf[1:]
		}

		if buf == thinkOpen {
			f.inThink = true
			continue
		}
		f.pending = buf
	}

	return display.String()
}

// Flush returns any text still held back as a possible open-marker prefix.
// Call once at end of stream. Inside an unclosed think block there is
// nothing to flush; that text stays out of the display.
func (f *ThinkFilter) Flush() string {
	if f.inThink {
		return ""
	}
	out := f.pending
	f.pending = ""
	return out
}

// FullContent returns the complete unfiltered text, suppressed sections
// included. This is what goes into the conversation history.
func (f *ThinkFilter) FullContent() string {
	return f.full.String()
}
