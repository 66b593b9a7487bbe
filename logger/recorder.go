package logger

import (
	"strings"
	"sync"
)

// Entry is one line captured by a Recorder.
type Entry struct {
	Level    string
	Category string
	Msg      string
}

// Recorder keeps every entry in memory. Tests use it to assert on what a
// component logged.
type Recorder struct {
	mu      sync.Mutex
	Entries []Entry
}

func (r *Recorder) add(level, category, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, Entry{Level: level, Category: category, Msg: msg})
}

func (r *Recorder) Info(category, msg string)    { r.add("info", category, msg) }
func (r *Recorder) Success(category, msg string) { r.add("success", category, msg) }
func (r *Recorder) Warning(category, msg string) { r.add("warning", category, msg) }
func (r *Recorder) Error(category, msg string)   { r.add("error", category, msg) }
func (r *Recorder) Skip(category, msg string)    { r.add("skip", category, msg) }
func (r *Recorder) Detail(category, msg string)  { r.add("detail", category, msg) }

// Contains reports whether an entry at level has a message containing substr.
func (r *Recorder) Contains(level, substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.Entries {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}
