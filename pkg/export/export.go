// Package export writes relay plans in machine-readable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/kilianp07/relayctl/core/scheduler"
)

// WriteJSON writes the plan to w as a JSON array.
func WriteJSON(w io.Writer, entries []scheduler.Entry) error {
	if entries == nil {
		entries = []scheduler.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// WriteCSV writes the plan to w with a topic,time,state header.
func WriteCSV(w io.Writer, entries []scheduler.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"topic", "time", "state"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Topic, e.Time.Format(time.RFC3339), e.State()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format, "json" or "csv".
func Write(w io.Writer, format string, entries []scheduler.Entry) error {
	switch format {
	case "json":
		return WriteJSON(w, entries)
	case "csv":
		return WriteCSV(w, entries)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
