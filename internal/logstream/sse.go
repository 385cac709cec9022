package logstream

import (
	"encoding/json"
	"fmt"
	"io"
)

type ssePayload struct {
	Type string    `json:"type"`
	Log  *sseEntry `json:"log,omitempty"`
	Message string `json:"message,omitempty"`
}

type sseEntry struct {
	Timestamp int64  `json:"timestamp"`
	Message   string `json:"message"`
}

// WriteSSE encodes one Event as an SSE frame ("data: {json}\n\n") to w.
func WriteSSE(w io.Writer, e Event) error {
	p := ssePayload{Type: string(e.Kind)}
	switch e.Kind {
	case KindHistorical, KindRealtime:
		p.Log = &sseEntry{Timestamp: e.Timestamp.Unix(), Message: e.Text}
	case KindError:
		p.Message = e.Message
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", b)
	return err
}
