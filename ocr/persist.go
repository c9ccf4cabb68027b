package ocr

import (
	"os"

	"github.com/inkocr/inkocr/archive"
	"github.com/inkocr/inkocr/log"
)

// Bundle packs the samples and, when trained, the model.
func (s *Service) Bundle() (*archive.Zip, error) {
	z := archive.NewZip()

	data, err := s.ExportTrainingData()
	if err != nil {
		return nil, err
	}
	z.TrainingData = data
	z.Content.SampleCount = s.store.Len()
	z.Content.Characters = s.Characters()

	if s.IsTrained() {
		if z.Model, err = s.ExportModel(); err != nil {
			return nil, err
		}
		z.Content.Trained = true
	}
	return z, nil
}

// Restore replaces the samples and model with those of a bundle. The
// training data is restored first so a bundled model stays trained.
func (s *Service) Restore(z *archive.Zip) error {
	if len(z.TrainingData) > 0 {
		if err := s.ImportTrainingData(z.TrainingData); err != nil {
			return err
		}
	}
	if len(z.Model) > 0 {
		return s.ImportModel(z.Model)
	}
	return nil
}

// Save writes the samples to dataPath and the model, if trained, to
// modelPath.
func (s *Service) Save(dataPath, modelPath string) error {
	if err := s.store.Save(dataPath); err != nil {
		return err
	}
	if !s.IsTrained() {
		return nil
	}
	data, err := s.ExportModel()
	if err != nil {
		return err
	}
	return os.WriteFile(modelPath, data, 0600)
}

// Load restores what Save wrote. Missing files are skipped.
func (s *Service) Load(dataPath, modelPath string) error {
	if err := s.store.Load(dataPath); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	} else {
		s.invalidate()
		log.Info.Printf("loaded %d samples from %s", s.store.Len(), dataPath)
	}

	data, err := os.ReadFile(modelPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.ImportModel(data)
}
