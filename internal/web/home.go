package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Home lists every room with its phase and roster.
func Home(rooms []RoomStatus) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html>
<html lang="ja">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Vive Gamer</title>
    <style>
      body { font-family: sans-serif; margin: 2rem; background: #101522; color: #f2f4f8; }
      .rooms { display: grid; grid-template-columns: repeat(auto-fit, minmax(14rem, 1fr)); gap: 1rem; }
      .room { background: #1b2236; border-radius: 12px; padding: 1rem; }
      .phase { font-size: 0.8rem; padding: 0.1rem 0.5rem; border-radius: 999px; }
      .idle { background: #33415c; }
      .live { background: #d7263d; }
      .offline { opacity: 0.5; }
    </style>
  </head>
  <body>
    <header>
      <h1>Vive Gamer</h1>
      <p>Four rooms, always open. Connect to <code>/ws/{mode}</code> to play.</p>
    </header>
    <main class="rooms">
`)
		for _, room := range rooms {
			b.WriteString(`      <section class="room" id="room-` + esc(room.Mode) + `">
        <h2>` + esc(room.Title) + `</h2>
        <span class="` + phaseClass(room.Phase) + `">` + esc(room.Phase) + `</span>
        <p>Round ` + roundLabel(room) + `</p>
`)
			if len(room.Players) == 0 {
				b.WriteString("        <p>No players yet.</p>\n")
			} else {
				b.WriteString("        <ul>\n")
				for _, player := range room.Players {
					class := ""
					if !player.Connected {
						class = ` class="offline"`
					}
					b.WriteString(`          <li` + class + `>` + esc(player.Nickname) + ` <strong>` + itoa(player.Score) + `</strong></li>
`)
				}
				b.WriteString("        </ul>\n")
			}
			b.WriteString("      </section>\n")
		}
		b.WriteString(`    </main>
  </body>
</html>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
