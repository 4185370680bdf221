package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/pop-os/tiler/tile"
)

// Decoder reads one JSON Request per line from r, following the same
// bufio.Reader/ReadString('\n') shape as the pack's line-oriented IPC
// client, rather than json.Decoder's stream-of-values mode (which would
// require the client to never interleave anything but compact JSON on a
// single line — ReadString keeps the line boundary authoritative).
type Decoder struct {
	r   *bufio.Reader
	log *zerolog.Logger
}

// NewDecoder wraps r. A nil logger is replaced with a disabled one.
func NewDecoder(r io.Reader, log *zerolog.Logger) *Decoder {
	if log == nil {
		disabled := zerolog.Nop()
		log = &disabled
	}
	return &Decoder{r: bufio.NewReader(r), log: log}
}

// ErrClosed is returned by Next once the underlying reader reaches EOF.
var ErrClosed = errors.New("ipc: input closed")

// Next reads and decodes the next Request line, skipping blank lines.
// Unparseable lines are logged at Error and skipped rather than returned as
// an error, matching the external protocol's "unparseable input logs an
// error and continues" rule; Next only returns an error for ErrClosed or an
// unexpected read failure.
func (d *Decoder) Next() (Request, error) {
	for {
		line, err := d.r.ReadString('\n')
		if len(line) > 0 {
			if len(line) > 0 && line[len(line)-1] == '\n' {
				line = line[:len(line)-1]
			}
			if trimmed := trimSpaceASCII(line); trimmed != "" {
				var req Request
				if decodeErr := json.Unmarshal([]byte(trimmed), &req); decodeErr != nil {
					d.log.Error().Err(decodeErr).Str("line", trimmed).Msg("ipc: unparseable request line")
				} else {
					return req, nil
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Request{}, ErrClosed
			}
			return Request{}, fmt.Errorf("ipc: read request: %w", err)
		}
	}
}

func trimSpaceASCII(s string) string {
	start := 0
	for start < len(s) && (s[start] == ' ' || s[start] == '\t' || s[start] == '\r') {
		start++
	}
	end := len(s)
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}

// Encoder writes one JSON Event per line to w.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder wraps w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode writes a single event line, flushing immediately so the client
// sees it without buffering delay.
func (e *Encoder) Encode(ev tile.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return err
	}
	return e.w.Flush()
}

// EncodeAll writes events in order, stopping at the first encoding or
// write error.
func (e *Encoder) EncodeAll(events []tile.Event) error {
	for _, ev := range events {
		if err := e.Encode(ev); err != nil {
			return err
		}
	}
	return nil
}
