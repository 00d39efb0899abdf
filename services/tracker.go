package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/logan-wrld/austin-port-to-rail/models"
)

// HistoryLimit bounds the tracker's status-transition log; the oldest
// entries drop first.
const HistoryLimit = 1000

const defaultHistoryPage = 50

// TrackerService is the durable vessel state store. Every read goes
// back to the file, so concurrent writers through other processes are
// always visible; the mutex serializes this process's read-merge-write
// cycles against each other.
type TrackerService struct {
	path string
	mu   sync.Mutex
}

func NewTrackerService(path string) *TrackerService {
	return &TrackerService{path: path}
}

func emptyTrackerState() models.TrackerState {
	return models.TrackerState{
		Vessels: map[string]models.Vessel{},
		History: []models.HistoryEntry{},
		Stats:   map[string]any{},
	}
}

// Load returns the full tracker state. A missing or corrupt file is
// never fatal: it reads as an empty valid state.
func (s *TrackerService) Load() models.TrackerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *TrackerService) load() models.TrackerState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("tracker read failed, starting empty: %v", err)
		}
		return emptyTrackerState()
	}

	var state models.TrackerState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("tracker file corrupt, starting empty: %v", err)
		return emptyTrackerState()
	}

	if state.Vessels == nil {
		state.Vessels = map[string]models.Vessel{}
	}
	if state.History == nil {
		state.History = []models.HistoryEntry{}
	}
	if state.Stats == nil {
		state.Stats = map[string]any{}
	}
	return state
}

// save writes the state to a temp file and renames it into place, so a
// reader never observes a partial document. On failure the prior file
// is untouched.
func (s *TrackerService) save(state models.TrackerState) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create tracker dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tracker state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tracker temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace tracker file: %w", err)
	}
	return nil
}

// Update applies a replacement or merge and persists the result. Merge
// semantics: vessels overwrite key-by-key, incoming history appends
// then truncates to the newest HistoryLimit entries, and stats, being
// opaque, are replaced wholesale when supplied.
func (s *TrackerService) Update(u models.TrackerUpdate) (models.TrackerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state models.TrackerState
	if u.Merge {
		state = s.load()
		for mmsi, vessel := range u.Vessels {
			state.Vessels[mmsi] = vessel
		}
		state.History = append(state.History, u.History...)
		if u.Stats != nil {
			state.Stats = u.Stats
		}
	} else {
		state = emptyTrackerState()
		if u.Vessels != nil {
			state.Vessels = u.Vessels
		}
		if u.History != nil {
			state.History = u.History
		}
		if u.Stats != nil {
			state.Stats = u.Stats
		}
	}

	if len(state.History) > HistoryLimit {
		state.History = state.History[len(state.History)-HistoryLimit:]
	}
	state.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	if err := s.save(state); err != nil {
		return models.TrackerState{}, err
	}
	return state, nil
}

// ListVessels returns all vessels sorted by MMSI, optionally filtered
// by exact status match.
func (s *TrackerService) ListVessels(statusFilter string) []models.Vessel {
	state := s.Load()

	vessels := make([]models.Vessel, 0, len(state.Vessels))
	for _, v := range state.Vessels {
		if statusFilter != "" && v.Status != statusFilter {
			continue
		}
		vessels = append(vessels, v)
	}
	sort.Slice(vessels, func(i, j int) bool { return vessels[i].MMSI < vessels[j].MMSI })
	return vessels
}

// DockedVessels returns vessels currently docked or unloading, grouped
// by terminal. Vessels without a terminal fall into an "Unknown" bucket.
func (s *TrackerService) DockedVessels() map[string][]models.Vessel {
	byTerminal := map[string][]models.Vessel{}
	for _, v := range s.ListVessels("") {
		if v.Status != models.VesselStatusDocked && v.Status != models.VesselStatusUnloading {
			continue
		}
		terminal := v.Terminal
		if terminal == "" {
			terminal = "Unknown"
		}
		byTerminal[terminal] = append(byTerminal[terminal], v)
	}
	return byTerminal
}

// History returns the most recent limit entries, newest first.
func (s *TrackerService) History(limit int) []models.HistoryEntry {
	if limit <= 0 {
		limit = defaultHistoryPage
	}

	history := s.Load().History
	if len(history) > limit {
		history = history[len(history)-limit:]
	}

	out := make([]models.HistoryEntry, len(history))
	for i, entry := range history {
		out[len(history)-1-i] = entry
	}
	return out
}

// Stats recomputes status and terminal histograms from the current
// vessel set. Only last_updated is carried over from persisted state;
// the stored stats blob itself stays opaque.
func (s *TrackerService) Stats() models.TrackerStats {
	state := s.Load()

	stats := models.TrackerStats{
		TotalTracked: len(state.Vessels),
		ByStatus:     map[string]int{},
		ByTerminal:   map[string]int{},
		LastUpdated:  state.LastUpdated,
	}
	if stats.LastUpdated == "" {
		if v, ok := state.Stats["lastUpdated"].(string); ok {
			stats.LastUpdated = v
		}
	}

	for _, v := range state.Vessels {
		status := v.Status
		if status == "" {
			status = "unknown"
		}
		stats.ByStatus[status]++
		if v.Terminal != "" {
			stats.ByTerminal[v.Terminal]++
		}
	}
	return stats
}
