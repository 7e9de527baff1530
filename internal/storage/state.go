package storage

import (
	"encoding/json"
	"fmt"

	"github.com/GojiraTai/koleksiyon-takip/models"
)

// DefaultKey is the backend key the state document is stored under.
const DefaultKey = "koleksiyon-takip-state"

// State is the whole persisted document: watch flags plus both metadata
// caches.
type State struct {
	WatchedItems    map[string]bool                  `json:"watchedItems"`
	WatchedEpisodes map[string]bool                  `json:"watchedEpisodes"`
	ResolutionCache map[string]models.ResolvedRecord `json:"resolutionCache"`
	SeasonCache     map[string]models.SeasonRecord   `json:"seasonCache"`
}

// NewState returns an empty document with every map allocated.
func NewState() *State {
	return &State{
		WatchedItems:    make(map[string]bool),
		WatchedEpisodes: make(map[string]bool),
		ResolutionCache: make(map[string]models.ResolvedRecord),
		SeasonCache:     make(map[string]models.SeasonRecord),
	}
}

// Encode serialises the document.
func (s *State) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// Decode parses a persisted document. Missing sections come back empty.
func Decode(data []byte) (*State, error) {
	state := NewState()
	if len(data) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	state.ensure()
	return state, nil
}

func (s *State) ensure() {
	if s.WatchedItems == nil {
		s.WatchedItems = make(map[string]bool)
	}
	if s.WatchedEpisodes == nil {
		s.WatchedEpisodes = make(map[string]bool)
	}
	if s.ResolutionCache == nil {
		s.ResolutionCache = make(map[string]models.ResolvedRecord)
	}
	if s.SeasonCache == nil {
		s.SeasonCache = make(map[string]models.SeasonRecord)
	}
}

// Clone returns a copy whose maps and episode slices can be mutated freely.
// Records themselves are immutable once written, so pointer fields are shared.
func (s *State) Clone() *State {
	out := &State{
		WatchedItems:    make(map[string]bool, len(s.WatchedItems)),
		WatchedEpisodes: make(map[string]bool, len(s.WatchedEpisodes)),
		ResolutionCache: make(map[string]models.ResolvedRecord, len(s.ResolutionCache)),
		SeasonCache:     make(map[string]models.SeasonRecord, len(s.SeasonCache)),
	}
	for k, v := range s.WatchedItems {
		out.WatchedItems[k] = v
	}
	for k, v := range s.WatchedEpisodes {
		out.WatchedEpisodes[k] = v
	}
	for k, v := range s.ResolutionCache {
		out.ResolutionCache[k] = v
	}
	for k, v := range s.SeasonCache {
		if v.Episodes != nil {
			v.Episodes = append([]models.Episode(nil), v.Episodes...)
		}
		out.SeasonCache[k] = v
	}
	return out
}
