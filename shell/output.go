package shell

import (
	"encoding/json"

	"github.com/abiosoft/ishell"

	"github.com/inkocr/inkocr/dataset"
)

// SampleJSON is a sample without its image data.
type SampleJSON struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func displaySamplesJSON(c *ishell.Context, samples []dataset.Sample) error {
	jsonSamples := make([]SampleJSON, len(samples))
	for i, s := range samples {
		jsonSamples[i] = SampleJSON{ID: s.ID, Label: s.Label}
	}
	return displayJSON(c, jsonSamples)
}

func displayJSON(c *ishell.Context, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	c.Println(string(output))
	return nil
}
