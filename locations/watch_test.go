package locations

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeCSVFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatch_BlocksUntilCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.csv")
	writeCSVFile(t, path, "id,label,lat,lng,timezone\nparis,Paris,48.8566,2.3522,Europe/Paris\n")

	d := NewDirectory()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Watch(ctx, path, nil) }()

	// Callers that need to keep going (a server starting up, say) must run
	// Watch in a goroutine: it does not return while the context lives.
	select {
	case err := <-done:
		t.Fatalf("Watch returned before cancel: %v", err)
	case <-time.After(500 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Watch = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_ReloadsOnFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.csv")
	writeCSVFile(t, path, "id,label,lat,lng,timezone\nparis,Paris,48.8566,2.3522,Europe/Paris\n")

	d := NewDirectory()
	if _, err := d.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan Event, 4)
	d.Subscribe(func(ev Event) { reloaded <- ev })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Watch(ctx, path, nil) }()

	// Give the watcher a moment to install before mutating the file.
	time.Sleep(100 * time.Millisecond)
	writeCSVFile(t, path, "id,label,lat,lng,timezone\nparis,Paris,48.8566,2.3522,Europe/Paris\ntokyo,Tokyo,35.6762,139.6503,Asia/Tokyo\n")

	select {
	case ev := <-reloaded:
		if ev.Type != EventReloaded || ev.Count != 2 {
			t.Errorf("event = %+v, want reload with 2 places", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed after file change")
	}
	if _, ok := d.Lookup("tokyo"); !ok {
		t.Error("tokyo missing after reload")
	}

	cancel()
	<-done
}
