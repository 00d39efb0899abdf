package models

import "encoding/json"

// Vessel statuses the tracker treats specially. The status field is an
// open string set; feeds may report values beyond these.
const (
	VesselStatusDocked    = "docked"
	VesselStatusUnloading = "unloading"
	VesselStatusInTransit = "in-transit"
	VesselStatusDeparted  = "departed"
)

// Vessel is keyed by MMSI. Extra holds any attributes the feed sent
// beyond the known fields; they round-trip through the store untouched.
type Vessel struct {
	MMSI     string
	Name     string
	Status   string
	Terminal string
	Extra    map[string]json.RawMessage
}

func (v Vessel) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(v.Extra)+4)
	for k, raw := range v.Extra {
		out[k] = raw
	}
	setString := func(key, val string) error {
		if val == "" {
			return nil
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return err
		}
		out[key] = raw
		return nil
	}
	for _, f := range []struct{ key, val string }{
		{"mmsi", v.MMSI},
		{"name", v.Name},
		{"status", v.Status},
		{"terminal", v.Terminal},
	} {
		if err := setString(f.key, f.val); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

func (v *Vessel) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	takeString := func(key string, dest *string) {
		raw, ok := fields[key]
		if !ok {
			return
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			*dest = s
			delete(fields, key)
		}
	}
	takeString("mmsi", &v.MMSI)
	takeString("name", &v.Name)
	takeString("status", &v.Status)
	takeString("terminal", &v.Terminal)
	if len(fields) > 0 {
		v.Extra = fields
	} else {
		v.Extra = nil
	}
	return nil
}

// HistoryEntry records a single vessel status transition.
type HistoryEntry struct {
	MMSI       string `json:"mmsi"`
	Name       string `json:"name,omitempty"`
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status"`
	Timestamp  string `json:"timestamp"`
}

// TrackerState is the full persisted tracker document. Stats is opaque
// to the store: callers write it, the store never recomputes it.
type TrackerState struct {
	Vessels     map[string]Vessel `json:"vessels"`
	History     []HistoryEntry    `json:"history"`
	Stats       map[string]any    `json:"stats"`
	LastUpdated string            `json:"last_updated,omitempty"`
}

// TrackerUpdate is the typed update payload: a full replacement, or a
// key-by-key merge when Merge is set.
type TrackerUpdate struct {
	Merge   bool              `json:"merge"`
	Vessels map[string]Vessel `json:"vessels"`
	History []HistoryEntry    `json:"history"`
	Stats   map[string]any    `json:"stats"`
}

// TrackerStats is derived from the current vessel set on every read.
type TrackerStats struct {
	TotalTracked int            `json:"total_tracked"`
	ByStatus     map[string]int `json:"by_status"`
	ByTerminal   map[string]int `json:"by_terminal"`
	LastUpdated  string         `json:"last_updated,omitempty"`
}
