package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/bounce/internal/physics"
	"github.com/san-kum/bounce/internal/sim"
)

var framesHeader = []string{"tick", "id", "x", "y", "vx", "vy", "radius", "color"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteFramesCSV writes one row per body per frame.
func WriteFramesCSV(out io.Writer, frames []sim.Frame) error {
	w := csv.NewWriter(out)
	if err := w.Write(framesHeader); err != nil {
		return err
	}

	for _, f := range frames {
		tick := strconv.Itoa(f.Tick)
		for _, sp := range f.Sprites {
			row := []string{
				tick,
				strconv.Itoa(sp.ID),
				formatFloat(sp.Position.X),
				formatFloat(sp.Position.Y),
				formatFloat(sp.Velocity.X),
				formatFloat(sp.Velocity.Y),
				formatFloat(sp.Radius),
				sp.Color,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// ReadFramesCSV groups rows written by WriteFramesCSV back into frames.
func ReadFramesCSV(in io.Reader) ([]sim.Frame, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	frames := make([]sim.Frame, 0)
	for i, record := range records[1:] {
		if len(record) < len(framesHeader)-1 {
			continue
		}

		nums := make([]float64, 7)
		for j := 0; j < 7; j++ {
			nums[j], err = strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+2, framesHeader[j], err)
			}
		}

		sp := sim.Sprite{
			ID:       int(nums[1]),
			Position: physics.Vec(nums[2], nums[3]),
			Velocity: physics.Vec(nums[4], nums[5]),
			Radius:   nums[6],
		}
		if len(record) > 7 {
			sp.Color = record[7]
		}

		tick := int(nums[0])
		if len(frames) == 0 || frames[len(frames)-1].Tick != tick {
			frames = append(frames, sim.Frame{Tick: tick})
		}
		last := &frames[len(frames)-1]
		last.Sprites = append(last.Sprites, sp)
	}

	return frames, nil
}

type ExportData struct {
	Run    RunMetadata `json:"run"`
	Energy []float64   `json:"energy"`
	Frames []sim.Frame `json:"frames"`
}

// ExportJSON writes a run with all its frames to path, or to stdout when
// path is "-".
func (s *Store) ExportJSON(runID, path string) error {
	data, err := s.exportData(runID)
	if err != nil {
		return err
	}

	if path == "-" {
		return encodeJSON(os.Stdout, data)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeJSON(file, data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ExportCSV copies a run's frames to path, or to stdout when path is "-".
func (s *Store) ExportCSV(runID, path string) error {
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	if path == "-" {
		return WriteFramesCSV(os.Stdout, frames)
	}
	return writeFile(path, func(f *os.File) error {
		return WriteFramesCSV(f, frames)
	})
}

func (s *Store) exportData(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return nil, err
	}
	energy, err := s.LoadEnergy(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *meta, Energy: energy, Frames: frames}, nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
