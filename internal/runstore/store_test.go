package runstore_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"gridtrace/internal/runstore"
	"gridtrace/internal/testsupport"
)

func TestBeginAndComplete(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run, err := store.Begin(ctx, "run-1", "/videos/a.mp4", "shape")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if run.Status != runstore.StatusRunning {
		t.Fatalf("expected running status, got %q", run.Status)
	}
	if run.StartedAt.IsZero() || !run.FinishedAt.IsZero() {
		t.Fatalf("unexpected timestamps: %+v", run)
	}

	outcome := runstore.Outcome{
		Frames:        900,
		MatchedFrames: 120,
		Reactions: []runstore.ReactionRow{
			{Trial: 1, Start: 0, End: 2, InitDur: 1, TotalDur: 2, FirstX: 3, FirstY: 4, FinalX: 3, FinalY: 4, Clicks: 1},
			{Trial: 2, Start: 10, End: 10, FinalX: -1, FinalY: 2, FirstX: -1, FirstY: 2},
		},
	}
	if err := store.Complete(ctx, run.ID, outcome); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != runstore.StatusCompleted || got.Frames != 900 || got.MatchedFrames != 120 || got.Trials != 2 {
		t.Fatalf("unexpected completed run: %+v", got)
	}
	if got.FinishedAt.IsZero() || got.Duration() < 0 {
		t.Fatalf("expected finish timestamp, got %+v", got)
	}
	if !got.Status.IsTerminal() {
		t.Fatal("completed should be terminal")
	}

	rows, err := store.Reactions(ctx, run.ID)
	if err != nil {
		t.Fatalf("Reactions failed: %v", err)
	}
	if len(rows) != 2 || rows[0] != outcome.Reactions[0] || rows[1] != outcome.Reactions[1] {
		t.Fatalf("unexpected reaction rows: %+v", rows)
	}
}

func TestBeginRequiresID(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if _, err := store.Begin(context.Background(), "  ", "/videos/a.mp4", "shape"); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestFailStatuses(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	cases := []struct {
		name    string
		status  runstore.Status
		wantErr bool
	}{
		{"failed", runstore.StatusFailed, false},
		{"review", runstore.StatusReview, false},
		{"completed rejected", runstore.StatusCompleted, true},
		{"running rejected", runstore.StatusRunning, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := "run-" + strings.ReplaceAll(tc.name, " ", "-")
			if _, err := store.Begin(ctx, id, "/videos/b.mp4", "pixel"); err != nil {
				t.Fatalf("Begin failed: %v", err)
			}
			err := store.Fail(ctx, id, tc.status, 42, "frame 41: 3 lit cells")
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Fail failed: %v", err)
			}
			got, err := store.Get(ctx, id)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got.Status != tc.status || got.Frames != 42 || got.ErrorMessage != "frame 41: 3 lit cells" {
				t.Fatalf("unexpected run: %+v", got)
			}
		})
	}
}

func TestFailUnknownRun(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if err := store.Fail(context.Background(), "missing", runstore.StatusFailed, 0, "boom"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	run, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if run != nil {
		t.Fatalf("expected nil run, got %+v", run)
	}
}

func TestListNewestFirstAndLimit(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	for _, id := range []string{"first", "second", "third"} {
		if _, err := store.Begin(ctx, id, "/videos/"+id+".mp4", "shape"); err != nil {
			t.Fatalf("Begin %s failed: %v", id, err)
		}
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != "third" || runs[2].ID != "first" {
		t.Fatalf("unexpected order: %v", ids(runs))
	}

	limited, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "third" {
		t.Fatalf("unexpected limited list: %v", ids(limited))
	}
}

func TestFindByPrefix(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	for _, id := range []string{"abc123", "abd456"} {
		if _, err := store.Begin(ctx, id, "/videos/x.mp4", "shape"); err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
	}

	run, err := store.FindByPrefix(ctx, "abc")
	if err != nil {
		t.Fatalf("FindByPrefix failed: %v", err)
	}
	if run == nil || run.ID != "abc123" {
		t.Fatalf("unexpected run %+v", run)
	}
	if _, err := store.FindByPrefix(ctx, "ab"); err == nil {
		t.Fatal("expected ambiguity error")
	}
	missing, err := store.FindByPrefix(ctx, "zz")
	if err != nil || missing != nil {
		t.Fatalf("expected no match, got %+v, %v", missing, err)
	}
	if _, err := store.FindByPrefix(ctx, ""); err == nil {
		t.Fatal("expected error for empty prefix")
	}
}

func TestRemoveCascadesReactions(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	if _, err := store.Begin(ctx, "gone", "/videos/c.mp4", "shape"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	outcome := runstore.Outcome{Reactions: []runstore.ReactionRow{{Trial: 1}}}
	if err := store.Complete(ctx, "gone", outcome); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	removed, err := store.Remove(ctx, "gone")
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	rows, err := store.Reactions(ctx, "gone")
	if err != nil {
		t.Fatalf("Reactions failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected reactions to cascade, got %+v", rows)
	}
	removed, err = store.Remove(ctx, "gone")
	if err != nil || removed {
		t.Fatalf("second Remove = %v, %v", removed, err)
	}
}

func TestMarkAbandoned(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		if _, err := store.Begin(ctx, id, "/videos/"+id+".mp4", "shape"); err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
	}
	if err := store.Complete(ctx, "b", runstore.Outcome{}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	count, err := store.MarkAbandoned(ctx)
	if err != nil {
		t.Fatalf("MarkAbandoned failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 abandoned run, got %d", count)
	}
	run, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if run.Status != runstore.StatusFailed || run.ErrorMessage == "" {
		t.Fatalf("unexpected abandoned run: %+v", run)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := runstore.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	path := store.Path()
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	_, err = runstore.OpenPath(path)
	if !errors.Is(err, runstore.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenAppliesPendingMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := runstore.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	path := store.Path()
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Roll the database back to the layout before reaction rows were stored.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	for _, stmt := range []string{"DROP TABLE reactions", "PRAGMA user_version = 1"} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	_ = db.Close()

	store, err = runstore.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if _, err := store.Begin(ctx, "run-upgrade", "/videos/p01.mp4", "shape"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	outcome := runstore.Outcome{Frames: 10, MatchedFrames: 4, Reactions: []runstore.ReactionRow{{Trial: 1, Start: 2, End: 5}}}
	if err := store.Complete(ctx, "run-upgrade", outcome); err != nil {
		t.Fatalf("Complete after upgrade failed: %v", err)
	}
	rows, err := store.Reactions(ctx, "run-upgrade")
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected 1 reaction row after upgrade, got %d (%v)", len(rows), err)
	}
}

func ids(runs []*runstore.Run) []string {
	out := make([]string, 0, len(runs))
	for _, r := range runs {
		out = append(out, r.ID)
	}
	return out
}
