package analysis

import (
	"strings"

	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/models"
)

type Point struct{ X, Y float64 }

// PhasePortrait holds the trajectory projected onto two state components.
type PhasePortrait struct {
	XIndex, YIndex int
	Points         []Point
}

// NewPhasePortrait projects traj onto components xIdx and yIdx. It returns
// nil if either index is out of range for any state.
func NewPhasePortrait(traj *dynamo.Trajectory, xIdx, yIdx int) *PhasePortrait {
	portrait := &PhasePortrait{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, traj.Len()),
	}
	for _, s := range traj.States {
		if xIdx < 0 || yIdx < 0 || xIdx >= len(s) || yIdx >= len(s) {
			return nil
		}
		portrait.Points = append(portrait.Points, Point{X: s[xIdx], Y: s[yIdx]})
	}
	return portrait
}

// PreyPredatorPortrait is the usual N against P view.
func PreyPredatorPortrait(traj *dynamo.Trajectory) *PhasePortrait {
	return NewPhasePortrait(traj, models.Prey, models.Predator)
}

// Bounds returns the extent of the portrait. Empty portraits report zeros.
func (p *PhasePortrait) Bounds() (minX, maxX, minY, maxY float64) {
	if p == nil || len(p.Points) == 0 {
		return 0, 0, 0, 0
	}
	minX, maxX = p.Points[0].X, p.Points[0].X
	minY, maxY = p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}
	return minX, maxX, minY, maxY
}

// ToASCII renders the portrait on a width×height character canvas. The
// first point is drawn as 'o' and the last as '*'.
func (p *PhasePortrait) ToASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width <= 1 || height <= 1 {
		return ""
	}

	minX, maxX, minY, maxY := p.Bounds()

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	cell := func(pt Point) (int, int) {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		return row, col
	}

	// Axes first so the trajectory draws over them.
	if minX <= 0 && maxX >= 0 {
		_, col := cell(Point{})
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row, _ := cell(Point{})
		for col := 0; col < width; col++ {
			canvas[row][col] = '─'
		}
	}

	for _, pt := range p.Points {
		row, col := cell(pt)
		canvas[row][col] = '•'
	}
	row, col := cell(p.Points[0])
	canvas[row][col] = 'o'
	row, col = cell(p.Points[len(p.Points)-1])
	canvas[row][col] = '*'

	var sb strings.Builder
	for _, line := range canvas {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}
