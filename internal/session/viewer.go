package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// LogSuffix ends the file name of every session log written by DefaultLogPath.
const LogSuffix = "-session.jsonl"

// maxLineSize bounds a single NDJSON line. Transition events carry little
// data, but error events may include generator output.
const maxLineSize = 1024 * 1024

// SessionFile is a session log found on disk.
type SessionFile struct {
	Path    string
	Name    string
	ModTime time.Time
	Summary Summary
}

// Summary condenses the events of one session.
type Summary struct {
	Mode   string
	Engine string
	Model  string

	Started  time.Time
	Duration time.Duration

	Events      int
	Transitions int
	Saved       int
	Failed      int
	Errors      []string

	// FinalPhase is the phase recorded when the session ended; empty when
	// the log has no session_complete event.
	FinalPhase string
}

// Outcome is FinalPhase, or "unfinished".
func (s Summary) Outcome() string {
	if s.FinalPhase == "" {
		return "unfinished"
	}
	return s.FinalPhase
}

// Summarize folds events into a Summary. Counts from the session_complete
// event win over the per-item events.
func Summarize(events []Event) Summary {
	var s Summary
	s.Events = len(events)
	if len(events) == 0 {
		return s
	}
	s.Started = events[0].Timestamp
	s.Duration = events[len(events)-1].Timestamp.Sub(s.Started)

	for _, ev := range events {
		switch ev.Type {
		case EventSessionStart:
			s.Mode = str(ev.Data, "mode")
			s.Engine = str(ev.Data, "engine")
			s.Model = str(ev.Data, "model")
		case EventTransition:
			s.Transitions++
		case EventItemSaved:
			if ok, _ := ev.Data["ok"].(bool); ok { //nolint:errcheck
				s.Saved++
			} else {
				s.Failed++
			}
		case EventError:
			s.Errors = append(s.Errors, str(ev.Data, "message"))
		case EventSessionEnd:
			s.FinalPhase = str(ev.Data, "phase")
			s.Saved = jsonNumber(ev.Data["saved"])
			s.Failed = jsonNumber(ev.Data["failed"])
		}
	}
	return s
}

// ListSessions returns the session logs in dir, newest first. Files that
// cannot be read are skipped.
func ListSessions(dir string) ([]SessionFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading session directory: %w", err)
	}

	var files []SessionFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), LogSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, e.Name())
		events, err := ReadEvents(path)
		if err != nil {
			continue
		}
		files = append(files, SessionFile{
			Path:    path,
			Name:    e.Name(),
			ModTime: info.ModTime(),
			Summary: Summarize(events),
		})
	}

	slices.SortFunc(files, func(a, b SessionFile) int {
		return b.ModTime.Compare(a.ModTime)
	})
	return files, nil
}

// ReadEvents parses a session log. Malformed lines are skipped so a log cut
// short by a crash stays readable.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening session file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		var ev Event
		if json.Unmarshal(scanner.Bytes(), &ev) != nil {
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	return events, nil
}

// RenderTimeline writes one line per event followed by the session summary.
//
//nolint:errcheck // display-only writes
func RenderTimeline(w io.Writer, events []Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	sum := Summarize(events)
	fmt.Fprintf(w, "Session %s  (%s mode, %s/%s)\n\n", sum.Started.Format(time.RFC3339), sum.Mode, sum.Engine, sum.Model)
	for _, ev := range events {
		fmt.Fprintf(w, "%s  %s\n", formatOffset(ev.Timestamp.Sub(sum.Started)), describe(ev))
	}
	fmt.Fprintf(w, "\n%s: %d saved, %d failed, %d transitions in %s\n",
		sum.Outcome(), sum.Saved, sum.Failed, sum.Transitions, sum.Duration.Round(time.Millisecond))
}

func describe(ev Event) string {
	switch ev.Type {
	case EventSessionStart:
		return "● started"
	case EventTransition:
		from, to, name := str(ev.Data, "from"), str(ev.Data, "to"), str(ev.Data, "event")
		if from == to {
			return fmt.Sprintf("  %s (%s)", name, to)
		}
		return fmt.Sprintf("▶ %s → %s on %s", from, to, name)
	case EventItemSaved:
		icon := "✗"
		if ok, _ := ev.Data["ok"].(bool); ok { //nolint:errcheck
			icon = "✓"
		}
		return fmt.Sprintf("  %s %s %.0f%%", icon, str(ev.Data, "requirement_id"), jsonFloat(ev.Data["progress"]))
	case EventError:
		return "✗ " + str(ev.Data, "message")
	case EventSessionEnd:
		return "■ " + str(ev.Data, "phase")
	}
	return fmt.Sprintf("%s %v", ev.Type, ev.Data)
}

func formatOffset(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("+%5dms", d.Milliseconds())
	}
	return fmt.Sprintf("+%6.1fs", d.Seconds())
}

func str(data map[string]any, key string) string {
	s, _ := data[key].(string) //nolint:errcheck
	return s
}

// jsonNumber reads an integer from a decoded JSON value.
func jsonNumber(v any) int {
	return int(jsonFloat(v))
}

func jsonFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64() //nolint:errcheck
		return f
	}
	return 0
}
