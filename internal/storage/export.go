package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/predprey/internal/dynamo"
)

type ExportData struct {
	Run    *RunMetadata `json:"run,omitempty"`
	Times  []float64    `json:"times"`
	Prey   []float64    `json:"prey"`
	Pred   []float64    `json:"predator"`
	Points int          `json:"points"`
}

// ExportJSON writes a run as column arrays. meta may be nil for runs that
// were never stored.
func ExportJSON(w io.Writer, meta *RunMetadata, traj *dynamo.Trajectory) error {
	data := ExportData{
		Run:    meta,
		Times:  traj.Times,
		Prey:   traj.Column(0),
		Pred:   traj.Column(1),
		Points: traj.Len(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
