package collab

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/canvas/internal/geom"
)

func TestPresenceUpdateKeepsOmittedFields(t *testing.T) {
	pm := NewPresenceManager()
	pm.Update("u1", &PresencePayload{Cursor: &geom.Point{X: 4, Y: 5}, Selection: []string{"a"}, Tool: "select"})
	got := pm.Update("u1", &PresencePayload{Tool: "rect"})

	require.NotNil(t, got.Cursor)
	assert.Equal(t, 4.0, got.Cursor.X)
	assert.Equal(t, []string{"a"}, got.Selection)
	assert.Equal(t, "rect", got.Tool)

	stored, ok := pm.Get("u1")
	require.True(t, ok)
	assert.Same(t, got, stored)
}

func TestPresenceRemoveAndState(t *testing.T) {
	pm := NewPresenceManager()
	pm.Update("u1", &PresencePayload{Tool: "select"})
	pm.Update("u2", &PresencePayload{Tool: "pencil"})
	pm.Remove("u1")

	_, ok := pm.Get("u1")
	assert.False(t, ok)

	msg := pm.StateMessage()
	assert.Equal(t, TypePresenceState, msg.Type)
	var state PresenceStatePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &state))
	require.Len(t, state.Presences, 1)
	assert.Equal(t, "pencil", state.Presences["u2"].Tool)
}
