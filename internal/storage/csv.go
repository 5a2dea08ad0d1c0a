package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/predprey/internal/dynamo"
)

// CSVHeader names the columns of a trajectory table.
var CSVHeader = []string{"time", "prey", "predator"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes one row per grid time. Values use the shortest
// representation that parses back to the same float64.
func WriteCSV(w io.Writer, traj *dynamo.Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	row := make([]string, len(CSVHeader))
	for i, t := range traj.Times {
		s := traj.States[i]
		if len(s) != len(CSVHeader)-1 {
			return fmt.Errorf("storage: state %d has %d components, want %d", i, len(s), len(CSVHeader)-1)
		}
		row[0] = formatFloat(t)
		for j, v := range s {
			row[j+1] = formatFloat(v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table written by WriteCSV.
func ReadCSV(r io.Reader) (*dynamo.Trajectory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(CSVHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: missing csv header")
	}

	traj := dynamo.NewTrajectory(len(records) - 1)
	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: row %d column %s: %w", i+1, CSVHeader[j], err)
			}
			vals[j] = v
		}
		traj.Append(vals[0], dynamo.State(vals[1:]))
	}
	return traj, nil
}
