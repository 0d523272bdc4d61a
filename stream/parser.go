package stream

import (
	"strings"
	"unicode/utf8"
)

const (
	eventPrefix = "event: "
	dataPrefix  = "data: "
)

// record is a fully framed event awaiting dispatch.
type record struct {
	Event string
	Data  string
}

// parser reassembles event records from an event-stream byte feed.
//
// It is incremental: Feed accepts arbitrary chunk boundaries, carrying both
// a partial trailing UTF-8 sequence and a partial trailing line across
// calls. Framing follows the producer's simplified dialect: "event: " and
// "data: " lines overwrite the pending record's fields (multi-line data is
// not accumulated, last write wins), a blank line dispatches only a complete
// record, and every other line is ignored.
type parser struct {
	carry []byte // incomplete trailing UTF-8 sequence
	buf   string // incomplete trailing line
	event string
	data  string
}

// Feed consumes a chunk and invokes emit once per completed record, in order.
func (p *parser) Feed(chunk []byte, emit func(rec record)) {
	text := p.decode(chunk)
	if text == "" {
		return
	}
	p.buf += text
	lines := strings.Split(p.buf, "\n")
	p.buf = lines[len(lines)-1]
	for _, line := range lines[:len(lines)-1] {
		p.line(line, emit)
	}
}

// decode appends chunk to the carried bytes and returns the longest
// decodable prefix, holding back a trailing partial UTF-8 sequence so a
// rune split across chunks decodes as if delivered whole.
func (p *parser) decode(chunk []byte) string {
	b := chunk
	if len(p.carry) > 0 {
		b = append(p.carry, chunk...)
		p.carry = nil
	}

	cut := len(b)
	for i := len(b); i > 0 && len(b)-i < utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i-1]) {
			if !utf8.FullRune(b[i-1:]) {
				cut = i - 1
			}
			break
		}
	}

	if cut < len(b) {
		p.carry = append([]byte(nil), b[cut:]...)
		b = b[:cut]
	}
	return string(b)
}

// line applies one complete line to the pending record.
func (p *parser) line(line string, emit func(rec record)) {
	switch {
	case strings.HasPrefix(line, eventPrefix):
		p.event = strings.TrimSpace(line[len(eventPrefix):])
	case strings.HasPrefix(line, dataPrefix):
		// Overwrite, not append: only the last data line before the blank
		// line survives.
		p.data = strings.TrimSpace(line[len(dataPrefix):])
	case line == "":
		// A blank line before the record is complete is producer padding;
		// keep the fields as they are.
		if p.event == "" || p.data == "" {
			return
		}
		emit(record{Event: p.event, Data: p.data})
		p.event, p.data = "", ""
	}
	// Comments, id:, retry: and anything else fall through untouched.
}
