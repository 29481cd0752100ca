package game

import (
	"strings"
	"unicode/utf8"
)

const MaxNicknameLength = 12

type Splat struct {
	ID   int    `json:"splatId"`
	From string `json:"fromNickname"`
}

type Player struct {
	ID        string
	Nickname  string
	Score     int
	Connected bool
	Combo     int
	Splats    []Splat
}

type PlayerView struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
}

func (p *Player) view() PlayerView {
	return PlayerView{ID: p.ID, Nickname: p.Nickname, Score: p.Score, Connected: p.Connected}
}

// roster keeps players in join order.
type roster struct {
	order []*Player
	byID  map[string]*Player
}

func newRoster() *roster {
	return &roster{byID: make(map[string]*Player)}
}

// ValidNickname reports whether the trimmed nickname is 1 to
// MaxNicknameLength characters long.
func ValidNickname(nickname string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(nickname))
	return n >= 1 && n <= MaxNicknameLength
}

func (r *roster) add(id, nickname string) *Player {
	p := &Player{ID: id, Nickname: nickname, Connected: true}
	r.order = append(r.order, p)
	r.byID[id] = p
	return p
}

func (r *roster) get(id string) *Player {
	return r.byID[id]
}

func (r *roster) remove(id string) {
	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, p := range r.order {
		if p.ID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *roster) all() []*Player {
	return r.order
}

func (r *roster) connected() []*Player {
	out := make([]*Player, 0, len(r.order))
	for _, p := range r.order {
		if p.Connected {
			out = append(out, p)
		}
	}
	return out
}

func (r *roster) len() int {
	return len(r.order)
}

func (r *roster) views() []PlayerView {
	out := make([]PlayerView, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, p.view())
	}
	return out
}

// resetPlayers zeroes scores and per-mode counters.
func (r *roster) resetPlayers() {
	for _, p := range r.order {
		p.Score = 0
		p.Combo = 0
		p.Splats = nil
	}
}

func (r *roster) purgeDisconnected() {
	kept := r.order[:0]
	for _, p := range r.order {
		if p.Connected {
			kept = append(kept, p)
			continue
		}
		delete(r.byID, p.ID)
	}
	r.order = kept
}
