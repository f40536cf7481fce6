package live

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// maxLine bounds a single event-stream line
const maxLine = 1 << 20

// Event is one dispatched server-sent event
type Event struct {
	ID   string
	Name string
	Data string
}

// Reader decodes a text/event-stream body
type Reader struct {
	scanner *bufio.Scanner
	lastID  string
	first   bool
}

// NewReader wraps r
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLine)
	sc.Split(scanLines)
	return &Reader{scanner: sc, first: true}
}

// LastEventID is the most recent id field seen
func (r *Reader) LastEventID() string {
	return r.lastID
}

// Next blocks until the next event is dispatched. It returns io.EOF when
// the stream ends; a partially buffered event is discarded.
func (r *Reader) Next() (Event, error) {
	var (
		data    strings.Builder
		hasData bool
		ev      Event
	)
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if r.first {
			line = strings.TrimPrefix(line, "\ufeff")
			r.first = false
		}

		if line == "" {
			if !hasData {
				ev = Event{}
				continue
			}
			ev.ID = r.lastID
			ev.Data = strings.TrimSuffix(data.String(), "\n")
			if ev.Name == "" {
				ev.Name = "message"
			}
			return ev, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			ev.Name = value
		case "data":
			data.WriteString(value)
			data.WriteByte('\n')
			hasData = true
		case "id":
			if !strings.ContainsRune(value, 0) {
				r.lastID = value
			}
		}
	}
	if err := r.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}

// scanLines splits on CRLF, LF or a lone CR
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
