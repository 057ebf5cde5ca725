package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/docmask/internal/masker"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("0001-swift.md", "0001", []byte("# T\n"))
	if len(job.ID) != 20 {
		t.Errorf("expected 20-char job ID, got %q", job.ID)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if string(job.FileData()) != "# T\n" {
		t.Errorf("unexpected file data %q", job.FileData())
	}
	other := NewJob("0001-swift.md", "0001", nil)
	if other.ID == job.ID {
		t.Error("expected distinct IDs for separate uploads")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusMasking, "masking"},
		{StatusPublishing, "publishing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("upload: status 500")
	job.AddError("index: timeout")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "upload: status 500" {
		t.Errorf("expected first error %q, got %q", "upload: status 500", snap.Progress.Errors[0])
	}
}

func TestJob_SetMasked(t *testing.T) {
	job := &Job{ID: "mask-test", UpdatedAt: time.Now()}
	job.SetMasked(masker.Result{
		Tokens:   12,
		Masked:   3,
		Metadata: masker.Metadata{Title: "Async", Status: "Accepted"},
	})
	job.SetContentID("abc123")

	snap := job.Snapshot()
	if snap.Progress.Tokens != 12 || snap.Progress.Masked != 3 {
		t.Errorf("unexpected counts %d/%d", snap.Progress.Tokens, snap.Progress.Masked)
	}
	if snap.Progress.Metadata.Title != "Async" {
		t.Errorf("expected title %q, got %q", "Async", snap.Progress.Metadata.Title)
	}
	if snap.Progress.ContentID != "abc123" {
		t.Errorf("expected content ID %q, got %q", "abc123", snap.Progress.ContentID)
	}
}

func TestJob_ReleaseData(t *testing.T) {
	job := NewJob("a.md", "a", []byte("body"))
	job.releaseData()
	if job.FileData() != nil {
		t.Error("expected file data to be released")
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}
