package protocol

import (
	"encoding/json"
	"fmt"
	"io"
)

// Block is one segment of an i3bar status line.
type Block struct {
	Name                string `json:"name,omitempty"`
	Instance            string `json:"instance,omitempty"`
	FullText            string `json:"full_text"`
	Markup              string `json:"markup,omitempty"`
	Color               string `json:"color,omitempty"`
	Separator           bool   `json:"separator,omitempty"`
	SeparatorBlockWidth int    `json:"separator_block_width,omitempty"`
}

// ClickEvent is what i3bar sends on stdin when a segment is clicked.
type ClickEvent struct {
	Name     string `json:"name"`
	Instance string `json:"instance"`
	Button   int    `json:"button"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

type header struct {
	Version     int  `json:"version"`
	ClickEvents bool `json:"click_events"`
}

// WriteHeader emits the protocol header and opens the infinite status array.
func WriteHeader(w io.Writer) error {
	data, err := json.Marshal(header{Version: 1, ClickEvents: true})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n[\n", data)
	return err
}

// WriteStatusLine emits one element of the status array.
func WriteStatusLine(w io.Writer, blocks []Block) error {
	if blocks == nil {
		blocks = []Block{}
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s,\n", data)
	return err
}

// ReadClickEvents decodes the click-event stream from r and forwards events
// until r is exhausted or stop is closed. i3bar frames the stream as one
// infinite JSON array.
func ReadClickEvents(r io.Reader, events chan<- ClickEvent, stop <-chan struct{}) {
	dec := json.NewDecoder(r)
	if _, err := dec.Token(); err != nil { // opening bracket
		return
	}
	for dec.More() {
		var ev ClickEvent
		if err := dec.Decode(&ev); err != nil {
			return
		}
		select {
		case events <- ev:
		case <-stop:
			return
		}
	}
}
