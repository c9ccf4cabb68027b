// Package dataset holds the labeled samples collected for training.
package dataset

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/inkocr/inkocr/log"
	"github.com/inkocr/inkocr/normalize"
)

const (
	// MinSamples and MinLabels gate training.
	MinSamples = 10
	MinLabels  = 2
)

// Sample is one normalized drawing and the character it shows.
type Sample struct {
	ImageData []float64 `json:"imageData"`
	Label     string    `json:"label"`
	ID        string    `json:"id"`
}

// Validate checks the label and the image vector.
func (s Sample) Validate() error {
	if strings.TrimSpace(s.Label) == "" {
		return errors.New("empty label")
	}
	return normalize.Valid(s.ImageData)
}

// Store is an ordered, concurrency safe collection of samples. The label set
// is derived from the samples on every change.
type Store struct {
	mu      sync.RWMutex
	samples []Sample
	labels  map[string]int
	version uint64
}

func NewStore() *Store {
	return &Store{labels: map[string]int{}}
}

// rebuild recomputes the label counts and bumps the version. Callers hold
// the write lock.
func (s *Store) rebuild() {
	s.labels = make(map[string]int)
	for _, sample := range s.samples {
		s.labels[sample.Label]++
	}
	s.version++
}

// Add appends a sample. The label is trimmed and an ID is generated when
// missing.
func (s *Store) Add(sample Sample) (Sample, error) {
	sample.Label = strings.TrimSpace(sample.Label)
	if err := sample.Validate(); err != nil {
		return Sample{}, errors.Wrap(err, "invalid sample")
	}
	if sample.ID == "" {
		sample.ID = uuid.New().String()
	}
	sample.ImageData = append([]float64(nil), sample.ImageData...)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.samples {
		if existing.ID == sample.ID {
			return Sample{}, errors.Errorf("duplicate sample id %s", sample.ID)
		}
	}
	s.samples = append(s.samples, sample)
	s.rebuild()

	log.Trace.Printf("added sample %s (%q), %d total", sample.ID, sample.Label, len(s.samples))
	return sample, nil
}

// Remove deletes the sample with the given id and reports whether it existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sample := range s.samples {
		if sample.ID == id {
			s.samples = append(s.samples[:i:i], s.samples[i+1:]...)
			s.rebuild()
			return true
		}
	}
	return false
}

// Clear removes every sample.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = nil
	s.rebuild()
}

// Replace swaps the whole sample set. Nothing changes when any sample is
// invalid.
func (s *Store) Replace(samples []Sample) error {
	seen := make(map[string]struct{}, len(samples))
	fresh := make([]Sample, len(samples))
	for i, sample := range samples {
		sample.Label = strings.TrimSpace(sample.Label)
		if err := sample.Validate(); err != nil {
			return errors.Wrapf(err, "sample %d", i)
		}
		if sample.ID == "" {
			sample.ID = uuid.New().String()
		}
		if _, dup := seen[sample.ID]; dup {
			return errors.Errorf("sample %d: duplicate id %s", i, sample.ID)
		}
		seen[sample.ID] = struct{}{}
		fresh[i] = sample
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = fresh
	s.rebuild()
	return nil
}

// Samples returns a copy of the samples in insertion order.
func (s *Store) Samples() []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Sample(nil), s.samples...)
}

// Get returns the sample with the given id.
func (s *Store) Get(id string) (Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sample := range s.samples {
		if sample.ID == id {
			return sample, true
		}
	}
	return Sample{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples)
}

func (s *Store) HasData() bool {
	return s.Len() > 0
}

// Counts returns the number of samples per label.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make(map[string]int, len(s.labels))
	for l, n := range s.labels {
		res[l] = n
	}
	return res
}

// Labels returns the distinct labels, sorted.
func (s *Store) Labels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]string, 0, len(s.labels))
	for l := range s.labels {
		res = append(res, l)
	}
	sort.Strings(res)
	return res
}

// Version changes whenever the sample set changes.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Readiness tells whether there is enough data to train, and why not.
func (s *Store) Readiness() (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.samples) < MinSamples || len(s.labels) < MinLabels {
		return false, "Need at least 10 samples and 2 characters to train"
	}
	return true, "Ready to train"
}

// Export encodes the samples as the training-data JSON array.
func (s *Store) Export() ([]byte, error) {
	samples := s.Samples()
	if samples == nil {
		samples = []Sample{}
	}
	return json.Marshal(samples)
}

// Import replaces the samples with a training-data JSON array.
func (s *Store) Import(data []byte) error {
	var samples []Sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return errors.Wrap(err, "invalid training data")
	}
	if samples == nil {
		return errors.New("invalid training data: not an array")
	}
	if err := s.Replace(samples); err != nil {
		return errors.Wrap(err, "invalid training data")
	}
	return nil
}

// Save writes the training data to path.
func (s *Store) Save(path string) error {
	data, err := s.Export()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Load reads training data written by Save.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return s.Import(data)
}
