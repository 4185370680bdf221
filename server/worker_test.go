package server

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pop-os/tiler/ipc"
	"github.com/pop-os/tiler/tile"
)

func TestWorkerSubmitRunsAgainstASingleTiler(t *testing.T) {
	w := NewWorker(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = w.Run(ctx)
	}()

	displayRect := ipc.DisplayUpdatePayload{Display: 0}
	displayRect.Rect.Width = 1920
	displayRect.Rect.Height = 1080
	displayRect.Rect.X, displayRect.Rect.Y = 1, 1

	if _, err := w.Submit(ctx, ipc.Request{Type: ipc.RequestDisplayUpdate, DisplayUpdate: &displayRect}); err != nil {
		t.Fatalf("Submit(display_update) error = %v", err)
	}
	if _, err := w.Submit(ctx, ipc.Request{Type: ipc.RequestWorkspaceUpdate, WorkspaceUpdate: &ipc.WorkspaceUpdatePayload{Workspace: 0, Display: 0}}); err != nil {
		t.Fatalf("Submit(workspace_update) error = %v", err)
	}

	id := tile.WindowID{Outer: 0, Inner: 0}
	events, err := w.Submit(ctx, ipc.Request{Type: ipc.RequestAttach, Window: &id})
	if err != nil {
		t.Fatalf("Submit(attach) error = %v", err)
	}
	found := false
	for _, e := range events {
		if e.Type == tile.EventTypeFocus && e.Focus != nil && *e.Focus == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a Focus event among %+v", events)
	}

	cancel()
	wg.Wait()
}

func TestSubmitAfterCloseReturnsErrClosed(t *testing.T) {
	w := NewWorker(nil)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	w.Close()
	<-done

	id := tile.WindowID{Outer: 0, Inner: 0}
	_, err := w.Submit(ctx, ipc.Request{Type: ipc.RequestAttach, Window: &id})
	if err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestServeDrivesOneRequestToCompletion(t *testing.T) {
	w := NewWorker(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	input := strings.NewReader(
		`{"type":"display_update","display_update":{"display":0,"rect":{"X":1,"Y":1,"Width":1920,"Height":1080}}}` + "\n" +
			`{"type":"workspace_update","workspace_update":{"workspace":0,"display":0}}` + "\n" +
			`{"type":"attach","window":{"outer":1,"inner":1}}` + "\n")
	var out strings.Builder
	dec := ipc.NewDecoder(input, nil)
	enc := ipc.NewEncoder(&out)

	if err := Serve(ctx, w, dec, enc); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	if !strings.Contains(out.String(), `"type":"fork"`) {
		t.Fatalf("expected a fork event in output, got %q", out.String())
	}
}
