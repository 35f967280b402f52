package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"allure-reporter/internal/collector"
)

// Handler consumes notifications. *collector.Collector implements it.
type Handler interface {
	Handle(n collector.Notification) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(n collector.Notification) error

// Handle calls f(n).
func (f HandlerFunc) Handle(n collector.Notification) error {
	return f(n)
}

// Decoder reads notifications from a JSON-lines stream.
type Decoder struct {
	r    *bufio.Reader
	line int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Line returns the number of the line decoded last.
func (d *Decoder) Line() int {
	return d.line
}

// Next returns the next notification, or io.EOF at the end of the stream.
func (d *Decoder) Next() (collector.Notification, error) {
	for {
		data, err := d.r.ReadBytes('\n')
		if len(data) > 0 {
			d.line++
			n, ok, perr := parseLine(data)
			if perr != nil {
				return collector.Notification{}, fmt.Errorf("line %d: %w", d.line, perr)
			}
			if ok {
				return n, nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return collector.Notification{}, io.EOF
			}
			return collector.Notification{}, fmt.Errorf("reading stream: %w", err)
		}
	}
}

// parseLine decodes one line. Blank and comment lines report ok=false.
func parseLine(line []byte) (collector.Notification, bool, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] == '#' {
		return collector.Notification{}, false, nil
	}
	var n collector.Notification
	if err := json.Unmarshal(line, &n); err != nil {
		return collector.Notification{}, false, err
	}
	if n.Kind == "" {
		return collector.Notification{}, false, errors.New("notification without kind")
	}
	return n, true, nil
}

// Encoder writes notifications as JSON lines. It is safe for concurrent use.
type Encoder struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes n followed by a newline.
func (e *Encoder) Encode(n collector.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.w.Write(append(data, '\n'))
	return err
}

// Tee forwards every notification to h and records it with e.
func Tee(h Handler, e *Encoder) Handler {
	return HandlerFunc(func(n collector.Notification) error {
		if err := e.Encode(n); err != nil {
			return fmt.Errorf("recording %s notification: %w", n.Kind, err)
		}
		return h.Handle(n)
	})
}
