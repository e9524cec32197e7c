package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/bounce/internal/config"
	"github.com/san-kum/bounce/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	energyFile   = "energy.csv"
)

var ErrNoFrames = errors.New("storage: run has no frames")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	TickMs      int                `json:"tick_ms"`
	Ticks       int                `json:"ticks"`
	Bodies      int                `json:"bodies"`
	Law         string             `json:"law"`
	Walls       string             `json:"walls"`
	Damping     string             `json:"damping"`
	Collisions  int                `json:"collisions"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	Config      *config.Config     `json:"config,omitempty"`
}

// Save writes a run directory named after name and the current time.
func (s *Store) Save(name string, cfg *config.Config, result *sim.Result) (string, error) {
	runID, runDir, err := s.newRunDir(name)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        name,
		Timestamp:   time.Now(),
		Seed:        cfg.Seed,
		TickMs:      cfg.TickMs,
		Ticks:       result.Ticks,
		Bodies:      len(result.Final().Sprites),
		Law:         cfg.Law,
		Walls:       cfg.Physics.Walls,
		Damping:     cfg.Physics.Damping,
		Collisions:  result.Collisions,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
		Config:      cfg,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, framesFile), func(f *os.File) error {
		return WriteFramesCSV(f, result.Frames)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, energyFile), func(f *os.File) error {
		return writeEnergyCSV(f, result.Energy)
	}); err != nil {
		return "", err
	}

	return runID, nil
}

// newRunDir creates <name>_<unix>, adding a counter if that directory exists.
func (s *Store) newRunDir(name string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runID := base
	for i := 2; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(f *os.File) error {
		return encodeJSON(f, v)
	})
}

func writeFile(path string, fn func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeEnergyCSV(f *os.File, energy []float64) error {
	w := csv.NewWriter(f)
	if err := w.Write([]string{"tick", "energy"}); err != nil {
		return err
	}
	for i, e := range energy {
		if err := w.Write([]string{strconv.Itoa(i), formatFloat(e)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	frames, err := ReadFramesCSV(file)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return frames, nil
}

func (s *Store) LoadEnergy(runID string) ([]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, energyFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []float64{}, nil
	}

	energy := make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		e, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		energy = append(energy, e)
	}
	return energy, nil
}

// Track returns one body's sprite for every stored tick.
func (s *Store) Track(runID string, id int) ([]sim.Sprite, error) {
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return nil, err
	}
	track := make([]sim.Sprite, 0, len(frames))
	for _, f := range frames {
		for _, sp := range f.Sprites {
			if sp.ID == id {
				track = append(track, sp)
				break
			}
		}
	}
	if len(track) == 0 {
		return nil, fmt.Errorf("%w: body %d in run %s", ErrNoFrames, id, runID)
	}
	return track, nil
}

// Dir returns the directory of a run.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}
