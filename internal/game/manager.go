package game

import "context"

// Room is one mode's state machine as seen from outside the executor.
type Room interface {
	Mode() Mode
	Dispatch(a Action)
	Summary(ctx context.Context) (Summary, error)
}

// Manager owns exactly one room per mode.
type Manager struct {
	rooms map[Mode]Room
}

func NewManager(rooms ...Room) *Manager {
	m := &Manager{rooms: make(map[Mode]Room, len(rooms))}
	for _, room := range rooms {
		m.rooms[room.Mode()] = room
	}
	return m
}

func (m *Manager) Room(mode Mode) (Room, bool) {
	room, ok := m.rooms[mode]
	return room, ok
}

// Dispatch routes an action to the room for mode.
func (m *Manager) Dispatch(mode Mode, a Action) bool {
	room, ok := m.rooms[mode]
	if !ok {
		return false
	}
	room.Dispatch(a)
	return true
}

// Summaries lists rooms in mode order, skipping any that do not answer.
func (m *Manager) Summaries(ctx context.Context) []Summary {
	out := make([]Summary, 0, len(m.rooms))
	for _, mode := range Modes {
		room, ok := m.rooms[mode]
		if !ok {
			continue
		}
		summary, err := room.Summary(ctx)
		if err != nil {
			continue
		}
		out = append(out, summary)
	}
	return out
}
