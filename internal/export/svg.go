package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/predprey/internal/analysis"
	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/models"
)

const (
	PreyColor     = "#2e86de"
	PredatorColor = "#e74c3c"
	background    = "#0a0a0a"
	margin        = 40.0
)

type bounds struct {
	minX, maxX, minY, maxY float64
}

// padded widens b by 10% in y and guards against zero ranges.
func (b bounds) padded() bounds {
	if b.maxX == b.minX {
		b.maxX = b.minX + 1
	}
	rangeY := b.maxY - b.minY
	if rangeY == 0 {
		rangeY = 1
	}
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b
}

func (b bounds) project(p analysis.Point, width, height int) (float64, float64) {
	w := float64(width) - 2*margin
	h := float64(height) - 2*margin
	x := margin + (p.X-b.minX)/(b.maxX-b.minX)*w
	y := margin + h - (p.Y-b.minY)/(b.maxY-b.minY)*h
	return x, y
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

func path(sb *strings.Builder, points []analysis.Point, b bounds, width, height int, stroke string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke)
	for i, p := range points {
		x, y := b.project(p, width, height)
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

func axes(sb *strings.Builder, b bounds, width, height int, xLabel, yLabel string) {
	x0, y0 := margin, float64(height)-margin
	x1, y1 := float64(width)-margin, margin
	fmt.Fprintf(sb, `<g stroke="#888" stroke-width="1"><line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/><line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/></g>
`, x0, y0, x1, y0, x0, y0, x0, y1)
	fmt.Fprintf(sb, `<g fill="#ccc" font-family="monospace" font-size="11">
<text x="%.1f" y="%.1f" text-anchor="middle">%s</text>
<text x="12" y="%.1f" transform="rotate(-90 12 %.1f)" text-anchor="middle">%s</text>
<text x="%.1f" y="%.1f">%.3g</text><text x="%.1f" y="%.1f" text-anchor="end">%.3g</text>
<text x="%.1f" y="%.1f" text-anchor="end">%.3g</text><text x="%.1f" y="%.1f" text-anchor="end">%.3g</text>
</g>
`,
		(x0+x1)/2, float64(height)-8, xLabel,
		(y0+y1)/2, (y0+y1)/2, yLabel,
		x0, y0+14, b.minX, x1, y0+14, b.maxX,
		x0-4, y0, b.minY, x0-4, y1+4, b.maxY)
}

// PhaseSVG draws a phase portrait as a single path.
func PhaseSVG(p *analysis.PhasePortrait, width, height int) string {
	if p == nil || len(p.Points) < 2 {
		return ""
	}
	minX, maxX, minY, maxY := p.Bounds()
	b := bounds{minX, maxX, minY, maxY}.padded()

	var sb strings.Builder
	header(&sb, width, height)
	axes(&sb, b, width, height, "prey", "predator")
	path(&sb, p.Points, b, width, height, PredatorColor)

	sx, sy := b.project(p.Points[0], width, height)
	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>
`, sx, sy, PreyColor)
	sb.WriteString("</svg>\n")
	return sb.String()
}

// TimeSeriesSVG draws prey and predator populations against time on
// shared axes.
func TimeSeriesSVG(traj *dynamo.Trajectory, width, height int) string {
	if traj == nil || traj.Len() < 2 {
		return ""
	}

	prey := make([]analysis.Point, traj.Len())
	pred := make([]analysis.Point, traj.Len())
	b := bounds{minX: traj.Times[0], maxX: traj.Times[traj.Len()-1]}
	b.minY, b.maxY = traj.States[0][models.Prey], traj.States[0][models.Prey]
	for i, t := range traj.Times {
		s := traj.States[i]
		prey[i] = analysis.Point{X: t, Y: s[models.Prey]}
		pred[i] = analysis.Point{X: t, Y: s[models.Predator]}
		b.minY = min(b.minY, s[models.Prey], s[models.Predator])
		b.maxY = max(b.maxY, s[models.Prey], s[models.Predator])
	}
	b = b.padded()

	var sb strings.Builder
	header(&sb, width, height)
	axes(&sb, b, width, height, "time", "population")
	path(&sb, prey, b, width, height, PreyColor)
	path(&sb, pred, b, width, height, PredatorColor)
	fmt.Fprintf(&sb, `<g font-family="monospace" font-size="11"><text x="%.1f" y="%.1f" fill="%s">prey</text><text x="%.1f" y="%.1f" fill="%s">predator</text></g>
`, float64(width)-margin-110, margin-10, PreyColor, float64(width)-margin-60, margin-10, PredatorColor)
	sb.WriteString("</svg>\n")
	return sb.String()
}
