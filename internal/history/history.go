// Package history records store mutations as undoable commands.
//
// Gestures write to the store many times per frame; they Lock the manager
// for their duration and record a single command once they finish.
package history

import (
	"log/slog"
)

type Manager struct {
	undo   []Command
	redo   []Command
	locked bool

	// Limit caps the undo stack; zero means unbounded.
	Limit int
	// OnChange, when set, runs after every stack change.
	OnChange func()

	log *slog.Logger
}

// NewManager returns an empty, unlocked manager.
func NewManager() *Manager {
	return &Manager{log: slog.Default()}
}

// SetLogger replaces the logger; nil restores slog.Default().
func (m *Manager) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	m.log = l
}

// Lock suppresses recording until Unlock.
func (m *Manager) Lock() { m.locked = true }

// Unlock re-enables recording.
func (m *Manager) Unlock() { m.locked = false }

// Locked reports whether recording is suppressed.
func (m *Manager) Locked() bool { return m.locked }

// Execute runs cmd and pushes it onto the undo stack, discarding the redo
// branch. While locked the call is ignored entirely.
func (m *Manager) Execute(cmd Command) bool {
	if m.locked {
		return false
	}
	cmd.Execute()
	m.push(cmd)
	return true
}

// Record pushes a command whose effect is already in the store. It follows
// the same lock rule as Execute.
func (m *Manager) Record(cmd Command) bool {
	if m.locked {
		return false
	}
	m.push(cmd)
	return true
}

func (m *Manager) push(cmd Command) {
	m.undo = append(m.undo, cmd)
	if m.Limit > 0 && len(m.undo) > m.Limit {
		m.undo = m.undo[len(m.undo)-m.Limit:]
	}
	m.redo = nil
	m.changed()
}

// Undo reverts the most recent command. It does nothing when the stack is
// empty or while a gesture holds the lock.
func (m *Manager) Undo() bool {
	if m.locked || len(m.undo) == 0 {
		return false
	}
	m.locked = true
	cmd := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	cmd.Undo()
	m.redo = append(m.redo, cmd)
	m.locked = false
	m.log.Debug("undo", "undo", len(m.undo), "redo", len(m.redo))
	m.changed()
	return true
}

// Redo re-applies the most recently undone command.
func (m *Manager) Redo() bool {
	if m.locked || len(m.redo) == 0 {
		return false
	}
	m.locked = true
	cmd := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	cmd.Redo()
	m.undo = append(m.undo, cmd)
	m.locked = false
	m.log.Debug("redo", "undo", len(m.undo), "redo", len(m.redo))
	m.changed()
	return true
}

func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }
func (m *Manager) UndoLen() int  { return len(m.undo) }
func (m *Manager) RedoLen() int  { return len(m.redo) }

// Clear drops both stacks, e.g. after loading a different board.
func (m *Manager) Clear() {
	m.undo, m.redo = nil, nil
	m.changed()
}

func (m *Manager) changed() {
	if m.OnChange != nil {
		m.OnChange()
	}
}
