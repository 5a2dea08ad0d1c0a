package export

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/san-kum/predprey/internal/analysis"
	"github.com/san-kum/predprey/internal/dynamo"
)

func loopTrajectory() *dynamo.Trajectory {
	traj := dynamo.NewTrajectory(4)
	traj.Append(0, dynamo.State{5, 2})
	traj.Append(1, dynamo.State{6, 2.5})
	traj.Append(2, dynamo.State{5, 3})
	traj.Append(3, dynamo.State{4, 2.5})
	return traj
}

func assertWellFormed(t *testing.T, svg string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(svg))
	for {
		_, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			t.Fatalf("invalid svg: %v\n%s", err, svg)
		}
	}
}

func TestTimeSeriesSVG(t *testing.T) {
	svg := TimeSeriesSVG(loopTrajectory(), 640, 360)

	assertWellFormed(t, svg)
	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("expected 2 paths, got %d", got)
	}
	for _, want := range []string{PreyColor, PredatorColor, `width="640"`, ">time<", ">population<"} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestPhaseSVG(t *testing.T) {
	svg := PhaseSVG(analysis.PreyPredatorPortrait(loopTrajectory()), 400, 400)

	assertWellFormed(t, svg)
	if got := strings.Count(svg, " L"); got != 3 {
		t.Errorf("expected 3 line segments, got %d", got)
	}
	if !strings.Contains(svg, "<circle") {
		t.Error("start marker missing")
	}
}

func TestSVGTooShort(t *testing.T) {
	traj := dynamo.NewTrajectory(1)
	traj.Append(0, dynamo.State{5, 2})

	if TimeSeriesSVG(traj, 100, 100) != "" {
		t.Error("single point should render nothing")
	}
	if PhaseSVG(analysis.PreyPredatorPortrait(traj), 100, 100) != "" {
		t.Error("single point should render nothing")
	}
	if PhaseSVG(nil, 100, 100) != "" {
		t.Error("nil portrait should render nothing")
	}
}
