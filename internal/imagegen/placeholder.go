package imagegen

import (
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"html"
)

var styleColors = map[string][2]string{
	"80年代レトロ": {"#ff6ec7", "#7b2ff7"},
	"粘土細工":    {"#e8a87c", "#85603f"},
	"サイバーパンク": {"#00f0ff", "#8b00ff"},
	"水彩画":     {"#87ceeb", "#dda0dd"},
	"ドット絵":    {"#4caf50", "#ffeb3b"},
	"浮世絵":     {"#1a237e", "#e65100"},
	"アメコミ":    {"#f44336", "#2196f3"},
	"パステル":    {"#ffc1cc", "#c1f0c1"},
}

const placeholderTextLimit = 20

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="512" height="512" viewBox="0 0 512 512">
  <defs>
    <linearGradient id="bg" x1="0%%" y1="0%%" x2="100%%" y2="100%%">
      <stop offset="0%%" style="stop-color:%s"/>
      <stop offset="100%%" style="stop-color:%s"/>
    </linearGradient>
  </defs>
  <rect width="512" height="512" fill="url(#bg)" rx="16"/>
  <text x="256" y="230" text-anchor="middle" fill="white" font-size="28" font-family="sans-serif" opacity="0.9">%s</text>
  <text x="256" y="290" text-anchor="middle" fill="white" font-size="18" font-family="sans-serif" opacity="0.6">%s</text>
</svg>`

// Placeholder renders the prompt and style into an SVG data URI.
func Placeholder(prompt, style string) string {
	from, to := placeholderColors(prompt, style)
	text := []rune(prompt)
	display := prompt
	if len(text) > placeholderTextLimit {
		display = string(text[:placeholderTextLimit]) + "…"
	}
	label := ""
	if style != "" {
		label = "[ " + style + " ]"
	}
	svg := fmt.Sprintf(placeholderSVG, from, to, html.EscapeString(display), html.EscapeString(label))
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

func placeholderColors(prompt, style string) (string, string) {
	if colors, ok := styleColors[style]; ok {
		return colors[0], colors[1]
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	hue := h.Sum32() % 360
	return fmt.Sprintf("hsl(%d, 70%%, 60%%)", hue), fmt.Sprintf("hsl(%d, 70%%, 40%%)", (hue+120)%360)
}
