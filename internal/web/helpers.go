package web

import (
	"strconv"

	"github.com/a-h/templ"
)

func itoa(value int) string {
	return strconv.Itoa(value)
}

func esc(value string) string {
	return templ.EscapeString(value)
}

func roundLabel(room RoomStatus) string {
	if room.TotalRounds == 0 {
		return "-"
	}
	return itoa(room.Round) + " / " + itoa(room.TotalRounds)
}

func phaseClass(phase string) string {
	if phase == "lobby" {
		return "phase idle"
	}
	return "phase live"
}
