package web

type RoomPlayer struct {
	Nickname  string
	Score     int
	Connected bool
}

// RoomStatus is one row of the status page.
type RoomStatus struct {
	Mode        string
	Title       string
	Phase       string
	Round       int
	TotalRounds int
	Players     []RoomPlayer
}
