package logger

import "testing"

func TestRecorderContains(t *testing.T) {
	r := &Recorder{}
	var l Logger = r
	l.Skip("Download", "File exists: a.mp4")
	l.Error("Download", "Failed for b.mp4")

	if !r.Contains("skip", "a.mp4") {
		t.Error("expected skip entry for a.mp4")
	}
	if r.Contains("error", "a.mp4") {
		t.Error("a.mp4 should not be logged as an error")
	}
	if len(r.Entries) != 2 {
		t.Errorf("entries = %d, want 2", len(r.Entries))
	}
}

func TestSetLevel(t *testing.T) {
	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}
	if err := SetLevel("nonsense"); err == nil {
		t.Error("expected error for unknown level")
	}
	SetLevel("info")
}
