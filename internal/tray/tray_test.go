package tray

import "testing"

func TestTray_RecordToggleUnavailableIgnoresClicks(t *testing.T) {
	tr := New()
	tr.SetRecordAvailable(false)

	called := false
	tr.OnToggleRecord(func(bool) { called = true })

	tr.handleToggleRecord()

	if called {
		t.Error("record callback fired while recording is unavailable")
	}
	if tr.IsRecording() {
		t.Error("recording state flipped while recording is unavailable")
	}
}

func TestTray_RecordToggleFlipsStateAndFiresCallback(t *testing.T) {
	tr := New()

	var got []bool
	tr.OnToggleRecord(func(recording bool) { got = append(got, recording) })

	tr.handleToggleRecord()
	tr.handleToggleRecord()

	if len(got) != 2 || !got[0] || got[1] {
		t.Errorf("callback sequence = %v, want [true false]", got)
	}
	if tr.IsRecording() {
		t.Error("recording state = true after toggling twice")
	}
}

func TestTray_DetectToggleStartsEnabled(t *testing.T) {
	tr := New()

	if !tr.IsDetecting() {
		t.Fatal("detection should start enabled")
	}

	var last bool
	tr.OnToggleDetect(func(enabled bool) { last = enabled })
	tr.handleToggleDetect()

	if tr.IsDetecting() || last {
		t.Error("first toggle should disable detection")
	}
}
