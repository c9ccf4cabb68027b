// Package archive reads and writes workspace bundles: a zip holding the
// training data, the trained model and a small content descriptor.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/inkocr/inkocr/log"
)

const (
	FileType = "inkocr"
	Version  = 1

	ContentFile      = "content.json"
	ModelFile        = "ocr-model.json"
	TrainingDataFile = "ocr-training-data.json"
)

// Content describes the bundle.
type Content struct {
	FileType    string   `json:"fileType"`
	Version     int      `json:"version"`
	CreatedTime string   `json:"createdTime"`
	SampleCount int      `json:"sampleCount"`
	Characters  []string `json:"characters"`
	Trained     bool     `json:"trained"`
}

// Zip is a workspace bundle. Model and TrainingData hold the raw JSON files;
// either may be empty.
type Zip struct {
	Content      Content
	Model        []byte
	TrainingData []byte
}

func NewZip() *Zip {
	return &Zip{
		Content: Content{
			FileType:   FileType,
			Version:    Version,
			Characters: []string{},
		},
	}
}

func createContent(c Content) ([]byte, error) {
	if c.CreatedTime == "" {
		c.CreatedTime = time.Now().UTC().Format(time.RFC3339)
	}
	if c.Characters == nil {
		c.Characters = []string{}
	}
	return json.MarshalIndent(c, "", "    ")
}

// Write encodes the bundle as a zip file.
func (z *Zip) Write(w io.Writer) error {
	archive := zip.NewWriter(w)

	content, err := createContent(z.Content)
	if err != nil {
		return err
	}
	files := []struct {
		name string
		data []byte
	}{
		{ContentFile, content},
		{TrainingDataFile, z.TrainingData},
		{ModelFile, z.Model},
	}

	for _, f := range files {
		if len(f.data) == 0 {
			continue
		}
		entry, err := archive.Create(f.name)
		if err != nil {
			return err
		}
		if _, err := entry.Write(f.data); err != nil {
			return err
		}
		log.Trace.Printf("archive: wrote %s (%d bytes)", f.name, len(f.data))
	}

	return archive.Close()
}

// WriteFile writes the bundle to path.
func (z *Zip) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := z.Write(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}

// Read decodes a bundle. Unknown entries are ignored.
func (z *Zip) Read(r io.ReaderAt, size int64) error {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return errors.Wrap(err, "can't open bundle")
	}

	var hasContent bool
	for _, f := range archive.File {
		var dst *[]byte
		switch f.Name {
		case ContentFile:
			hasContent = true
		case ModelFile:
			dst = &z.Model
		case TrainingDataFile:
			dst = &z.TrainingData
		default:
			log.Trace.Printf("archive: skipping %s", f.Name)
			continue
		}

		data, err := readEntry(f)
		if err != nil {
			return errors.Wrapf(err, "can't read %s", f.Name)
		}
		if dst != nil {
			*dst = data
			continue
		}
		if err := json.Unmarshal(data, &z.Content); err != nil {
			return errors.Wrap(err, "invalid content file")
		}
	}

	if !hasContent {
		return errors.Errorf("bundle has no %s", ContentFile)
	}
	if z.Content.FileType != FileType {
		return errors.Errorf("unsupported file type %q", z.Content.FileType)
	}
	if z.Content.Version > Version {
		return errors.Errorf("bundle version %d is newer than %d", z.Content.Version, Version)
	}
	return nil
}

// ReadFile reads the bundle at path.
func (z *Zip) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	return z.Read(f, fi.Size())
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
