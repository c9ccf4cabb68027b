// Package ocr ties the sample store to the classifier and tracks whether the
// current model still matches the samples.
package ocr

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/inkocr/inkocr/classifier"
	"github.com/inkocr/inkocr/dataset"
	"github.com/inkocr/inkocr/log"
)

type Status string

const (
	StatusIdle     Status = "idle"
	StatusTraining Status = "training"
	StatusTrained  Status = "trained"
)

var (
	ErrNotTrained         = errors.New("model not trained yet")
	ErrTrainingInProgress = errors.New("training already in progress")
	ErrNoSamples          = classifier.ErrNoSamples
	ErrNeedMoreLabels     = classifier.ErrNeedMoreLabels
)

// Service is the recognition workbench: samples, training state and model.
// Any change to the samples makes a trained model stale and the status
// returns to idle.
type Service struct {
	store *dataset.Store

	mu         sync.Mutex
	opts       classifier.Options
	model      *classifier.Model
	status     Status
	progress   float64
	onProgress classifier.ProgressFunc
}

func NewService(opts classifier.Options) *Service {
	return &Service{
		store:  dataset.NewStore(),
		opts:   opts,
		status: StatusIdle,
	}
}

func (s *Service) Store() *dataset.Store {
	return s.store
}

func (s *Service) Options() classifier.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// SetOptions changes the options used by the next training run.
func (s *Service) SetOptions(opts classifier.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
	return nil
}

// invalidate marks a trained model stale after the samples changed.
func (s *Service) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusTrained {
		log.Trace.Println("samples changed, model is stale")
		s.status = StatusIdle
	}
}

// AddSample stores a normalized image under label.
func (s *Service) AddSample(imageData []float64, label string) (dataset.Sample, error) {
	sample, err := s.store.Add(dataset.Sample{ImageData: imageData, Label: label})
	if err != nil {
		return sample, err
	}
	s.invalidate()
	return sample, nil
}

// RemoveSample deletes a sample by id and reports whether it existed.
func (s *Service) RemoveSample(id string) bool {
	if !s.store.Remove(id) {
		return false
	}
	s.invalidate()
	return true
}

// ClearData removes every sample.
func (s *Service) ClearData() {
	s.store.Clear()
	s.invalidate()
}

func (s *Service) HasData() bool {
	return s.store.HasData()
}

// Characters returns the sorted distinct labels of the samples.
func (s *Service) Characters() []string {
	return s.store.Labels()
}

func (s *Service) Samples() []dataset.Sample {
	return s.store.Samples()
}

func (s *Service) Counts() map[string]int {
	return s.store.Counts()
}

func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Service) IsTrained() bool {
	return s.Status() == StatusTrained
}

func (s *Service) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// OnProgress registers the callback notified during training. It replaces
// any previous callback; nil removes it.
func (s *Service) OnProgress(fn classifier.ProgressFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProgress = fn
}

func (s *Service) setProgress(p float64) {
	s.mu.Lock()
	s.progress = p
	fn := s.onProgress
	s.mu.Unlock()

	if fn != nil {
		fn(p)
	}
}

type trainingRun struct {
	examples []classifier.Example
	version  uint64
	opts     classifier.Options
}

// begin checks the preconditions and switches to training.
func (s *Service) begin() (*trainingRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusTraining {
		return nil, ErrTrainingInProgress
	}

	version := s.store.Version()
	samples := s.store.Samples()
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	if len(s.store.Labels()) < 2 {
		return nil, ErrNeedMoreLabels
	}

	run := &trainingRun{
		examples: make([]classifier.Example, len(samples)),
		version:  version,
		opts:     s.opts,
	}
	for i, sample := range samples {
		run.examples[i] = classifier.Example{Input: sample.ImageData, Label: sample.Label}
	}

	s.status = StatusTraining
	s.progress = 0
	return run, nil
}

func (s *Service) run(ctx context.Context, r *trainingRun) error {
	log.Info.Printf("training on %d samples", len(r.examples))
	model, err := classifier.Train(ctx, r.examples, r.opts, s.setProgress)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.status = StatusIdle
		log.Warning.Printf("training failed: %v", err)
		return err
	}

	s.model = model
	s.progress = 1
	if s.store.Version() != r.version {
		log.Warning.Println("samples changed during training, model is stale")
		s.status = StatusIdle
	} else {
		s.status = StatusTrained
	}
	log.Info.Printf("training finished, status %s", s.status)
	return nil
}

// Train fits a fresh model to the current samples and blocks until done.
func (s *Service) Train(ctx context.Context) error {
	r, err := s.begin()
	if err != nil {
		return err
	}
	return s.run(ctx, r)
}

// StartTraining validates like Train but trains in the background; done, if
// not nil, receives the outcome.
func (s *Service) StartTraining(ctx context.Context, done func(error)) error {
	r, err := s.begin()
	if err != nil {
		return err
	}
	go func() {
		err := s.run(ctx, r)
		if done != nil {
			done(err)
		}
	}()
	return nil
}

func (s *Service) trainedModel() (*classifier.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusTrained || s.model == nil {
		return nil, ErrNotTrained
	}
	return s.model, nil
}

// Recognize classifies a normalized image with the trained model.
func (s *Service) Recognize(imageData []float64) (*classifier.Result, error) {
	m, err := s.trainedModel()
	if err != nil {
		return nil, err
	}
	return m.Recognize(imageData)
}

// ExportModel encodes the trained model as JSON.
func (s *Service) ExportModel() ([]byte, error) {
	m, err := s.trainedModel()
	if err != nil {
		return nil, err
	}
	return m.MarshalJSON()
}

// ImportModel replaces the model and marks it trained.
func (s *Service) ImportModel(data []byte) error {
	m, err := classifier.Unmarshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusTraining {
		return ErrTrainingInProgress
	}
	s.model = m
	s.status = StatusTrained
	s.progress = 1
	log.Info.Printf("model imported, %d characters", len(m.Labels()))
	return nil
}

// ModelCharacters returns the labels the current model was trained on.
func (s *Service) ModelCharacters() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return nil
	}
	return s.model.Labels()
}

// ExportTrainingData encodes the samples as JSON.
func (s *Service) ExportTrainingData() ([]byte, error) {
	return s.store.Export()
}

// ImportTrainingData replaces the samples.
func (s *Service) ImportTrainingData(data []byte) error {
	if err := s.store.Import(data); err != nil {
		return err
	}
	s.invalidate()
	return nil
}
