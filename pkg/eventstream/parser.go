package eventstream

import "strings"

// Refresh stream protocol constants.
const (
	// CloseID marks the final event of a refresh stream.
	CloseID = "CLOSE"

	TypeCards        = "cards"
	TypeTransactions = "transactions"
)

// Event is one parsed block from the refresh stream. Type selects how the
// Data payload (JSON text) should be applied to the store.
type Event struct {
	ID   string
	Type string
	Data string
}

// Parser reassembles events from a chunked text stream. Chunks can split
// anywhere, including mid-event; whatever trails the last blank-line
// delimiter is carried over until a later chunk completes it, so the split
// points never change what gets parsed.
type Parser struct {
	buf string
}

// Feed appends a decoded chunk and returns every event it completed.
func (p *Parser) Feed(chunk []byte) []Event {
	p.buf += string(chunk)

	blocks := strings.Split(p.buf, "\n\n")
	p.buf = blocks[len(blocks)-1]

	events := make([]Event, 0, len(blocks)-1)
	for _, block := range blocks[:len(blocks)-1] {
		events = append(events, parseEvent(block))
	}

	return events
}

// parseEvent splits an event block into its fields. A field line is
// "name: value" with the first colon as the separator. Repeated names are
// joined with a newline rather than overwritten, matching how the backend
// spreads a large payload over several data lines.
func parseEvent(block string) Event {
	fields := make(map[string]string)

	for _, line := range strings.Split(block, "\n") {
		if line == "" {
			continue
		}

		name, value, _ := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		if existing, ok := fields[name]; ok {
			fields[name] = existing + "\n" + value
		} else {
			fields[name] = value
		}
	}

	return Event{
		ID:   fields["id"],
		Type: fields["event"],
		Data: fields["data"],
	}
}
