package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPopulationCrash  BookmarkType = "population_crash"
	BookmarkHuntBreakthrough BookmarkType = "hunt_breakthrough"
	BookmarkEpidemic         BookmarkType = "epidemic"
	BookmarkKingdomLost      BookmarkType = "kingdom_lost"
	BookmarkMulticellular    BookmarkType = "multicellular_emergence"
	BookmarkStableEcosystem  BookmarkType = "stable_ecosystem"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
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

	recentPeak         int // peak population since the last crash
	stableWindowsCount int // consecutive windows with a steady population
	sawMulticell       bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	if bd.historyFull || bd.historyIdx > 0 {
		add(bd.checkPopulationCrash(stats))
		add(bd.checkHuntBreakthrough(stats))
		add(bd.checkEpidemic(stats))
		add(bd.checkKingdomLost(stats))
		add(bd.checkStableEcosystem(stats))
	}
	add(bd.checkMulticellular(stats))

	bd.addToHistory(stats)
	if stats.Population > bd.recentPeak {
		bd.recentPeak = stats.Population
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns recorded windows, oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	ordered := make([]WindowStats, 0, bd.historySize)
	ordered = append(ordered, bd.history[bd.historyIdx:]...)
	return append(ordered, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) previous() WindowStats {
	idx := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[idx]
}

func (bd *BookmarkDetector) checkPopulationCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Population)/float64(bd.recentPeak)
	if drop > 0.30 && stats.Population < bd.recentPeak-10 {
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Population

		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Population),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkHuntBreakthrough(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var totalKills, totalHunts int
	for _, h := range history {
		totalKills += h.Kills
		totalHunts += h.Hunts
	}
	if totalHunts == 0 || stats.Hunts == 0 {
		return nil
	}

	avgKillRate := float64(totalKills) / float64(totalHunts)
	if avgKillRate == 0 {
		return nil
	}

	if stats.KillRate > avgKillRate*2.0 && stats.Kills >= 3 {
		return &Bookmark{
			Type:        BookmarkHuntBreakthrough,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Kill rate %.2f is %.1fx average (%.2f)", stats.KillRate, stats.KillRate/avgKillRate, avgKillRate),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkEpidemic(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Infections < 10 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Infections
	}
	avg := float64(total) / float64(len(history))

	if float64(stats.Infections) > max(avg, 1)*3.0 {
		return &Bookmark{
			Type:        BookmarkEpidemic,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d infections against an average of %.1f, %d infected", stats.Infections, avg, stats.Infected),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkKingdomLost(stats WindowStats) *Bookmark {
	prev := bd.previous()
	var lost []string
	if prev.Plants > 0 && stats.Plants == 0 {
		lost = append(lost, "plant")
	}
	if prev.Protists > 0 && stats.Protists == 0 {
		lost = append(lost, "protist")
	}
	if prev.Animals > 0 && stats.Animals == 0 {
		lost = append(lost, "animal")
	}
	if len(lost) == 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkKingdomLost,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Kingdom died out: %v", lost),
	}
}

func (bd *BookmarkDetector) checkMulticellular(stats WindowStats) *Bookmark {
	if bd.sawMulticell || stats.Multicellular == 0 {
		return nil
	}
	bd.sawMulticell = true
	return &Bookmark{
		Type:        BookmarkMulticellular,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("First multicellular organisms (%d)", stats.Multicellular),
	}
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	// Need every kingdom present
	if stats.Population < 20 || stats.Plants == 0 || stats.Protists == 0 || stats.Animals == 0 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += float64(h.Population)
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := float64(h.Population) - mean
		variance += d * d
	}
	variance /= 4

	// CV^2 < 0.04 means CV < 0.2
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable ecosystem of %d organisms (%d plants, %d protists, %d animals) over 5+ windows", stats.Population, stats.Plants, stats.Protists, stats.Animals),
		}
	}
	return nil
}
