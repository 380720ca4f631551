package streaming

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/chatpp/relay/relay/adaptor"
	relaymodel "github.com/chatpp/relay/relay/model"
)

const (
	initialScanBuffer = 64 << 10
	// maxScanBuffer bounds a single wire event; anything larger is corruption.
	maxScanBuffer = 1 << 20
)

// Transcoder drives a vendor's raw streaming body through frame reassembly and
// the adaptor's event interpretation, producing the canonical delta stream.
//
// Frames are dispatched only when complete: the SSE scanner and the JSON
// decoder both buffer partial reads, so wire events and multi-byte UTF-8
// sequences split across network chunks are reassembled before interpretation.
type Transcoder struct {
	adaptor adaptor.Adaptor
	format  adaptor.WireFormat
}

func NewTranscoder(a adaptor.Adaptor, format adaptor.WireFormat) *Transcoder {
	return &Transcoder{adaptor: a, format: format}
}

// Run consumes body until a terminal condition and calls emit for every
// canonical event, in arrival order. Exactly one terminal event is emitted;
// nothing follows it. Context cancellation terminates with a synthetic Done so
// callers that already committed a charge can reconcile a partial answer.
func (t *Transcoder) Run(ctx context.Context, body io.Reader, emit func(relaymodel.StreamEvent)) {
	s := &sink{emit: emit}
	switch t.format {
	case adaptor.WireFormatJSONArray:
		t.runJSONArray(ctx, body, s)
	default:
		t.runSSE(ctx, body, s)
	}
}

// sink enforces the absorbing terminal state: after Done or Error nothing
// else is accepted or emitted.
type sink struct {
	emit       func(relaymodel.StreamEvent)
	terminated bool
}

// send forwards one event; returns false once the stream is terminated.
func (s *sink) send(event relaymodel.StreamEvent) bool {
	if s.terminated {
		return false
	}
	if event.Terminal() {
		s.terminated = true
	}
	s.emit(event)
	return !s.terminated
}

// dispatch interprets one complete wire event. A parse failure terminates the
// stream: a corrupted event likely means content was lost, and continuing
// would hand the caller a silently truncated answer.
func (t *Transcoder) dispatch(payload []byte, s *sink) bool {
	action, err := t.adaptor.InterpretEvent(payload)
	if err != nil {
		s.send(relaymodel.ErrorEvent("malformed stream event: "+err.Error(), false))
		return false
	}
	if action.Err != "" {
		s.send(relaymodel.ErrorEvent(action.Err, false))
		return false
	}
	if action.Done {
		s.send(relaymodel.Done())
		return false
	}
	if action.HasText && action.Text != "" {
		return s.send(relaymodel.TextDelta(action.Text))
	}
	return true
}

func (t *Transcoder) runSSE(ctx context.Context, body io.Reader, s *sink) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, initialScanBuffer), maxScanBuffer)

	// data: lines accumulate until the blank line closing the event.
	var data []string
	flush := func() bool {
		if len(data) == 0 {
			return true
		}
		payload := strings.Join(data, "\n")
		data = data[:0]
		return t.dispatch([]byte(payload), s)
	}

	for scanner.Scan() {
		if ctx.Err() != nil {
			s.send(relaymodel.Done())
			return
		}
		line := scanner.Text()
		if line == "" {
			if !flush() {
				return
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		if value, ok := strings.CutPrefix(line, "data:"); ok {
			data = append(data, strings.TrimPrefix(value, " "))
		}
		// event:/id:/retry: fields carry nothing for the supported vendors.
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			s.send(relaymodel.Done())
			return
		}
		if errors.Is(err, bufio.ErrTooLong) {
			s.send(relaymodel.ErrorEvent("stream event exceeds size limit", false))
			return
		}
		s.send(relaymodel.ErrorEvent("read stream: "+err.Error(), true))
		return
	}

	// Connection closed: dispatch any dangling event, then end of stream.
	if !flush() {
		return
	}
	s.send(relaymodel.Done())
}

// runJSONArray decodes the chunked JSON-array body form: one top-level array
// whose elements are complete response objects. Absence of further elements
// before the connection closes is itself the end-of-stream signal.
func (t *Transcoder) runJSONArray(ctx context.Context, body io.Reader, s *sink) {
	dec := json.NewDecoder(body)

	tok, err := dec.Token()
	if err != nil {
		t.sendDecodeFailure(ctx, err, s)
		return
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		s.send(relaymodel.ErrorEvent("unexpected stream body: not a JSON array", false))
		return
	}

	for dec.More() {
		if ctx.Err() != nil {
			s.send(relaymodel.Done())
			return
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			t.sendDecodeFailure(ctx, err, s)
			return
		}
		if !t.dispatch(raw, s) {
			return
		}
	}
	s.send(relaymodel.Done())
}

func (t *Transcoder) sendDecodeFailure(ctx context.Context, err error, s *sink) {
	if ctx.Err() != nil {
		s.send(relaymodel.Done())
		return
	}
	if errors.Is(err, io.EOF) {
		// Body ended cleanly with no further elements.
		s.send(relaymodel.Done())
		return
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		s.send(relaymodel.ErrorEvent("malformed stream body: "+err.Error(), false))
		return
	}
	s.send(relaymodel.ErrorEvent("read stream: "+err.Error(), true))
}
