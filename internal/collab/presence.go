package collab

import (
	"sync"
)

type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // userID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

// Update merges p into the user's presence. A nil cursor or selection
// keeps the previous value, so clients can send just what moved.
func (pm *PresenceManager) Update(userID string, p *PresencePayload) *PresencePayload {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	merged := *p
	if prev, ok := pm.presences[userID]; ok {
		if merged.Cursor == nil {
			merged.Cursor = prev.Cursor
		}
		if merged.Selection == nil {
			merged.Selection = prev.Selection
		}
		if merged.Tool == "" {
			merged.Tool = prev.Tool
		}
	}
	pm.presences[userID] = &merged
	return &merged
}

// Get returns the user's presence, if any.
func (pm *PresenceManager) Get(userID string) (*PresencePayload, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	p, ok := pm.presences[userID]
	return p, ok
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, userID)
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*PresencePayload, len(pm.presences))
	for k, v := range pm.presences {
		result[k] = v
	}
	return result
}

func (pm *PresenceManager) StateMessage() *Message {
	return newMessage(TypePresenceState, PresenceStatePayload{Presences: pm.GetAll()})
}
