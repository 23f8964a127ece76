// Package journal provides an append-only JSONL log of schedule changes.
// Every link, unlink, completion, progress update and reschedule shift is
// recorded as a structured JSON event so a project's history can be replayed
// and audited.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event kinds identify the type of journal event.
const (
	KindLink     = "link"
	KindUnlink   = "unlink"
	KindComplete = "complete"
	KindShift    = "shift"
	KindProgress = "progress"
)

// Event represents a single journal record.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	ProjectID string    `json:"project,omitempty"`
	TaskID    string    `json:"task,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// EdgeData is the payload of link and unlink events.
type EdgeData struct {
	Prerequisite string `json:"prerequisite"`
}

// CompleteData is the payload of complete events.
type CompleteData struct {
	CompletedAt  time.Time `json:"completed_at"`
	VarianceDays float64   `json:"variance_days"`
	ShiftedTasks int       `json:"shifted_tasks"`
}

// ShiftData is the payload of shift events.
type ShiftData struct {
	Cause     string    `json:"cause"`
	FromStart time.Time `json:"from_start"`
	ToStart   time.Time `json:"to_start"`
	ToEnd     time.Time `json:"to_end"`
}

// ProgressData is the payload of progress events.
type ProgressData struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Emitter writes journal events to a JSONL file. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
	now  func() time.Time
}

// NewEmitter creates an Emitter that appends JSONL events to the file at
// path, creating the file and its parent directory if needed.
func NewEmitter(path string) (*Emitter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal: create dir for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
		now:  time.Now,
	}, nil
}

// Emit writes a single event. A missing ID or timestamp is filled in.
// Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now().UTC()
	}
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("journal: encode event: %w", err)
	}
	return nil
}

// Close closes the underlying file. Calling Close on a nil Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("journal: close: %w", err)
	}
	return nil
}

// ReadAll decodes every event in the journal at path. Payloads are decoded
// as generic JSON maps. A missing file yields no events.
func ReadAll(path string) ([]Event, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var evt Event
		if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
			return nil, fmt.Errorf("journal: %s line %d: %w", path, line, err)
		}
		events = append(events, evt)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("journal: read %s: %w", path, err)
	}
	return events, nil
}

// Filter returns the events belonging to projectID, or all events when
// projectID is empty.
func Filter(events []Event, projectID string) []Event {
	if projectID == "" {
		return events
	}
	var out []Event
	for _, e := range events {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out
}
