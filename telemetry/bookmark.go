package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkKillSurge         BookmarkType = "kill_surge"
	BookmarkFactionEliminated BookmarkType = "faction_eliminated"
	BookmarkStalemate         BookmarkType = "stalemate"
	BookmarkFailedTicks       BookmarkType = "failed_ticks"
)

// stalemateWindows is how many consecutive kill-free windows make a stalemate.
const stalemateWindows = 5

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	last         *WindowStats
	quietWindows int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkKillSurge(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	bookmarks = append(bookmarks, bd.checkElimination(stats)...)
	if b := bd.checkStalemate(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if stats.FailedTicks > 0 {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkFailedTicks,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d ticks failed in window", stats.FailedTicks),
		})
	}

	bd.addToHistory(stats)
	last := stats
	bd.last = &last

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkKillSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Collisions
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Collisions) > avg*2.0 && stats.Collisions >= 3 {
		return &Bookmark{
			Type:        BookmarkKillSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d collisions is %.1fx average (%.1f)", stats.Collisions, float64(stats.Collisions)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkElimination(stats WindowStats) []Bookmark {
	if bd.last == nil {
		return nil
	}

	var bookmarks []Bookmark
	check := func(name string, before, now int) {
		if before > 0 && now == 0 {
			bookmarks = append(bookmarks, Bookmark{
				Type:        BookmarkFactionEliminated,
				Tick:        stats.WindowEndTick,
				Description: fmt.Sprintf("%s eliminated (was %d)", name, before),
			})
		}
	}
	check("red", bd.last.RedCount, stats.RedCount)
	check("blue", bd.last.BlueCount, stats.BlueCount)
	return bookmarks
}

func (bd *BookmarkDetector) checkStalemate(stats WindowStats) *Bookmark {
	if stats.RedCount == 0 || stats.BlueCount == 0 || stats.Collisions > 0 {
		bd.quietWindows = 0
		return nil
	}

	bd.quietWindows++
	if bd.quietWindows == stalemateWindows { // trigger exactly once
		return &Bookmark{
			Type:        BookmarkStalemate,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("No collisions over %d windows with %d red, %d blue", stalemateWindows, stats.RedCount, stats.BlueCount),
		}
	}
	return nil
}
