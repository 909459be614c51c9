package telemetry

import (
	"testing"
)

func TestHubDefaults(t *testing.T) {
	h := NewHub()
	if h.Requests() == nil || h.Logs() == nil || h.Broadcaster() == nil {
		t.Fatal("hub missing components")
	}
}

func TestHubCapacityOptions(t *testing.T) {
	h := NewHub(WithRequestCapacity(2), WithLogCapacity(3))

	for i := 0; i < 5; i++ {
		h.Requests().Append(newCapture("r"))
		h.Log(LevelInfo, "m", nil, "")
	}
	if h.Requests().Count() != 2 {
		t.Errorf("request count = %d, want 2", h.Requests().Count())
	}
	if h.Logs().Count() != 3 {
		t.Errorf("log count = %d, want 3", h.Logs().Count())
	}
}

func TestHubLogDefaultsAndBroadcast(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Broadcaster().Subscribe(8)
	defer unsub()

	h.Log("", "something happened", map[string]any{"k": 1}, "")

	entries := h.Logs().All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	e := entries[0]
	if e.Level != LevelInfo {
		t.Errorf("level = %s, want default info", e.Level)
	}
	if e.Source != SourceSystem {
		t.Errorf("source = %s, want default system", e.Source)
	}
	if e.ID == "" || e.Timestamp.IsZero() {
		t.Error("ID/timestamp not assigned")
	}

	got := drain(ch)
	if len(got) != 1 || got[0].Name != EventLog {
		t.Errorf("broadcast = %v", got)
	}
}

func TestHubClearLogsDoesNotAffectSubscriptions(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Broadcaster().Subscribe(8)
	defer unsub()

	h.Log(LevelInfo, "before clear", nil, "")
	h.Logs().Clear()
	h.Log(LevelInfo, "after clear", nil, "")

	got := drain(ch)
	if len(got) != 2 {
		t.Errorf("received %d events across a clear, want 2", len(got))
	}
	if h.Logs().Count() != 1 {
		t.Errorf("log count = %d, want 1", h.Logs().Count())
	}
}

func TestHubStoresIndependent(t *testing.T) {
	h := NewHub()
	h.Requests().Append(newCapture("r"))
	h.Log(LevelInfo, "l", nil, "")

	h.Requests().Clear()
	if h.Logs().Count() != 1 {
		t.Error("clearing requests cleared logs")
	}

	h.Logs().Clear()
	h.Requests().Append(newCapture("r2"))
	if h.Requests().Count() != 1 {
		t.Error("request store broken after log clear")
	}
}
