package store_test

import (
	"context"
	"testing"

	"shotrouter/internal/store"
	"shotrouter/internal/testsupport"
)

func TestInsertAndGetScreenshot(t *testing.T) {
	t.Parallel()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record, err := st.InsertScreenshot(ctx, "/tmp/shots/one.png.sr-claim-1-2", 2048)
	if err != nil {
		t.Fatalf("InsertScreenshot: %v", err)
	}
	if record.ID == "" {
		t.Fatal("expected generated id")
	}
	if record.Status != store.StatusInbox {
		t.Fatalf("status = %s, want inbox", record.Status)
	}

	got, err := st.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected record")
	}
	if got.SourcePath != record.SourcePath || got.Size != 2048 {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if got.MovedAt != nil {
		t.Fatal("MovedAt should be nil before routing")
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}

	missing, err := st.Get(ctx, "sr_ffffffff")
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for unknown id")
	}
}

func TestInsertScreenshotRequiresPath(t *testing.T) {
	t.Parallel()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	if _, err := st.InsertScreenshot(context.Background(), "", 1); err == nil {
		t.Fatal("expected error for empty source path")
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	t.Parallel()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		record := testsupport.NewScreenshot(t, st, "/tmp/shots/file.png.sr-claim-1-1", int64(i+1))
		ids = append(ids, record.ID)
	}
	if _, err := st.MarkRouted(ctx, ids[0], "/dest/a.png"); err != nil {
		t.Fatalf("MarkRouted: %v", err)
	}
	if _, err := st.MarkRouted(ctx, ids[1], "/dest/b.png"); err != nil {
		t.Fatalf("MarkRouted: %v", err)
	}

	all, err := st.List(ctx, "", 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("len(all) = %d, want 5", len(all))
	}

	inbox, err := st.List(ctx, store.StatusInbox, 0, 0)
	if err != nil {
		t.Fatalf("List inbox: %v", err)
	}
	if len(inbox) != 3 {
		t.Fatalf("len(inbox) = %d, want 3", len(inbox))
	}
	for _, record := range inbox {
		if record.Status != store.StatusInbox {
			t.Fatalf("unexpected status %s in inbox listing", record.Status)
		}
	}

	pageOne, err := st.List(ctx, "", 2, 0)
	if err != nil {
		t.Fatalf("List page one: %v", err)
	}
	pageTwo, err := st.List(ctx, "", 2, 2)
	if err != nil {
		t.Fatalf("List page two: %v", err)
	}
	if len(pageOne) != 2 || len(pageTwo) != 2 {
		t.Fatalf("page sizes = %d, %d, want 2, 2", len(pageOne), len(pageTwo))
	}
	seen := map[string]bool{}
	for _, record := range append(pageOne, pageTwo...) {
		if seen[record.ID] {
			t.Fatalf("record %s appeared on both pages", record.ID)
		}
		seen[record.ID] = true
	}
}

func TestMarkRoutedIsIdempotent(t *testing.T) {
	t.Parallel()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record := testsupport.NewScreenshot(t, st, "/tmp/shots/x.png.sr-claim-1-1", 10)

	ok, err := st.MarkRouted(ctx, record.ID, "/dest/x.png")
	if err != nil || !ok {
		t.Fatalf("MarkRouted = %v, %v", ok, err)
	}
	ok, err = st.MarkRouted(ctx, record.ID, "/dest/x.png")
	if err != nil || !ok {
		t.Fatalf("second MarkRouted = %v, %v", ok, err)
	}

	got, err := st.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != store.StatusRouted || got.DestPath != "/dest/x.png" {
		t.Fatalf("record = %+v", got)
	}
	if got.MovedAt == nil {
		t.Fatal("MovedAt should be set after routing")
	}

	ok, err = st.MarkRouted(ctx, "sr_ffffffff", "/dest/y.png")
	if err != nil {
		t.Fatalf("MarkRouted unknown: %v", err)
	}
	if ok {
		t.Fatal("unknown id should report false")
	}
}

func TestMarkQuarantinedAndDelete(t *testing.T) {
	t.Parallel()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record := testsupport.NewScreenshot(t, st, "/tmp/shots/q.png.sr-claim-1-1", 10)

	ok, err := st.MarkQuarantined(ctx, record.ID)
	if err != nil || !ok {
		t.Fatalf("MarkQuarantined = %v, %v", ok, err)
	}
	got, err := st.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != store.StatusQuarantined {
		t.Fatalf("status = %s, want quarantined", got.Status)
	}

	ok, err = st.Delete(ctx, record.ID)
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	got, err = st.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if got != nil {
		t.Fatal("record should be gone")
	}
}

func TestStatsCountsByStatus(t *testing.T) {
	t.Parallel()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := testsupport.NewScreenshot(t, st, "/tmp/a.png.sr-claim-1-1", 1)
	testsupport.NewScreenshot(t, st, "/tmp/b.png.sr-claim-1-1", 1)
	if _, err := st.MarkRouted(ctx, a.ID, "/dest/a.png"); err != nil {
		t.Fatalf("MarkRouted: %v", err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[store.StatusInbox] != 1 || stats[store.StatusRouted] != 1 {
		t.Fatalf("stats = %v", stats)
	}
}

func TestRecordsSurviveReopen(t *testing.T) {
	t.Parallel()

	cfg := testsupport.NewConfig(t)

	first, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	record, err := first.InsertScreenshot(context.Background(), "/tmp/p.png.sr-claim-1-1", 77)
	if err != nil {
		t.Fatalf("InsertScreenshot: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	got, err := second.Get(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got == nil || got.Size != 77 {
		t.Fatalf("record after reopen = %+v", got)
	}
}
