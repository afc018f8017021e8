package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_KillSurge(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{
			WindowEndTick: int32(i * 300),
			RedCount:      50,
			BlueCount:     50,
			Collisions:    2,
		})
	}

	bookmarks := bd.Check(WindowStats{
		WindowEndTick: 1500,
		RedCount:      40,
		BlueCount:     40,
		Collisions:    10,
	})
	if !hasBookmark(bookmarks, BookmarkKillSurge) {
		t.Error("expected kill_surge bookmark")
	}
}

func TestBookmarkDetector_FactionEliminated(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if bookmarks := bd.Check(WindowStats{RedCount: 5, BlueCount: 3, Collisions: 1}); len(bookmarks) != 0 {
		t.Fatalf("unexpected bookmarks on first window: %v", bookmarks)
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 300, RedCount: 2, BlueCount: 0, Collisions: 3})
	if !hasBookmark(bookmarks, BookmarkFactionEliminated) {
		t.Fatal("expected faction_eliminated bookmark")
	}

	// Staying at zero does not retrigger.
	bookmarks = bd.Check(WindowStats{WindowEndTick: 600, RedCount: 2, BlueCount: 0})
	if hasBookmark(bookmarks, BookmarkFactionEliminated) {
		t.Error("faction_eliminated triggered twice")
	}
}

func TestBookmarkDetector_Stalemate(t *testing.T) {
	bd := NewBookmarkDetector(10)

	triggered := 0
	for i := 0; i < 2*stalemateWindows; i++ {
		bookmarks := bd.Check(WindowStats{
			WindowEndTick: int32(i * 300),
			RedCount:      20,
			BlueCount:     20,
		})
		if hasBookmark(bookmarks, BookmarkStalemate) {
			triggered++
			if i != stalemateWindows-1 {
				t.Errorf("stalemate at window %d, want %d", i, stalemateWindows-1)
			}
		}
	}
	if triggered != 1 {
		t.Errorf("stalemate triggered %d times, want 1", triggered)
	}
}

func TestBookmarkDetector_FailedTicks(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bookmarks := bd.Check(WindowStats{RedCount: 1, BlueCount: 1, FailedTicks: 2})
	if !hasBookmark(bookmarks, BookmarkFailedTicks) {
		t.Error("expected failed_ticks bookmark")
	}
}
