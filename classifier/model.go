package classifier

import (
	"encoding/json"
	"math"
	"sync"

	"github.com/pkg/errors"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anyvec"
	"gonum.org/v1/gonum/floats"
)

const (
	modelFormat = "inkocr.model.v1"

	// MaxAlternatives is the number of runner-up characters in a Result.
	MaxAlternatives = 4
)

// Model is a trained network together with the labels of its outputs.
type Model struct {
	labels    []string
	inputSize int
	opts      Options
	net       anynet.Net
	creator   anyvec.Creator

	mu sync.Mutex
}

// Alternative is a runner-up character with its confidence.
type Alternative struct {
	Character  string  `json:"character"`
	Confidence float64 `json:"confidence"`
}

// Result is the outcome of recognizing one character.
type Result struct {
	Character    string        `json:"character"`
	Confidence   float64       `json:"confidence"`
	Alternatives []Alternative `json:"alternatives"`
}

func (m *Model) Labels() []string {
	return append([]string(nil), m.labels...)
}

func (m *Model) InputSize() int {
	return m.inputSize
}

func (m *Model) Options() Options {
	return m.opts
}

// probabilities runs the network and returns one confidence per label.
func (m *Model) probabilities(input []float64) ([]float64, error) {
	if len(input) != m.inputSize {
		return nil, errors.Errorf("input has %d values, expected %d", len(input), m.inputSize)
	}

	m.mu.Lock()
	in := anydiff.NewConst(m.creator.MakeVectorData(m.creator.MakeNumericList(input)))
	out := vectorFloats(m.net.Apply(in, 1).Output())
	m.mu.Unlock()

	if len(out) != len(m.labels) {
		return nil, errors.Errorf("network produced %d outputs for %d labels", len(out), len(m.labels))
	}
	probs := make([]float64, len(out))
	for i, logProb := range out {
		probs[i] = math.Exp(logProb)
	}
	return probs, nil
}

// Run returns the confidence of every label for the input.
func (m *Model) Run(input []float64) (map[string]float64, error) {
	probs, err := m.probabilities(input)
	if err != nil {
		return nil, err
	}
	res := make(map[string]float64, len(probs))
	for i, p := range probs {
		res[m.labels[i]] = p
	}
	return res, nil
}

// Recognize ranks the labels by confidence and returns the best one with up
// to MaxAlternatives runners-up.
func (m *Model) Recognize(input []float64) (*Result, error) {
	probs, err := m.probabilities(input)
	if err != nil {
		return nil, err
	}

	sorted := append([]float64(nil), probs...)
	idx := make([]int, len(sorted))
	floats.Argsort(sorted, idx)

	ranked := make([]Alternative, 0, len(idx))
	for i := len(idx) - 1; i >= 0; i-- {
		ranked = append(ranked, Alternative{
			Character:  m.labels[idx[i]],
			Confidence: probs[idx[i]],
		})
	}

	res := &Result{
		Character:  ranked[0].Character,
		Confidence: ranked[0].Confidence,
	}
	rest := ranked[1:]
	if len(rest) > MaxAlternatives {
		rest = rest[:MaxAlternatives]
	}
	res.Alternatives = append([]Alternative{}, rest...)
	return res, nil
}

type modelFile struct {
	Format    string   `json:"format"`
	Labels    []string `json:"labels"`
	InputSize int      `json:"inputSize"`
	Options   Options  `json:"options"`
	Network   []byte   `json:"network"`
}

// MarshalJSON encodes the model with its serialized network weights.
func (m *Model) MarshalJSON() ([]byte, error) {
	m.mu.Lock()
	data, err := m.net.Serialize()
	m.mu.Unlock()
	if err != nil {
		return nil, errors.Wrap(err, "can't serialize network")
	}
	return json.Marshal(modelFile{
		Format:    modelFormat,
		Labels:    m.labels,
		InputSize: m.inputSize,
		Options:   m.opts,
		Network:   data,
	})
}

// Unmarshal decodes a model produced by MarshalJSON.
func Unmarshal(data []byte) (*Model, error) {
	var f modelFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "invalid model data")
	}
	if f.Format != modelFormat {
		return nil, errors.Errorf("invalid model data: unknown format %q", f.Format)
	}
	if len(f.Labels) == 0 {
		return nil, errors.New("invalid model data: no labels")
	}
	if f.InputSize <= 0 {
		return nil, errors.New("invalid model data: no input size")
	}

	net, err := anynet.DeserializeNet(f.Network)
	if err != nil {
		return nil, errors.Wrap(err, "invalid model data")
	}

	first, err := checkNetwork(net, f.InputSize, len(f.Labels))
	if err != nil {
		return nil, errors.Wrap(err, "invalid model data")
	}

	return &Model{
		labels:    f.Labels,
		inputSize: f.InputSize,
		opts:      f.Options,
		net:       net,
		creator:   first.Weights.Vector.Creator(),
	}, nil
}

// checkNetwork makes sure the layer sizes chain from inputs to outputs and
// the network ends in a log-softmax. It returns the first layer.
func checkNetwork(net anynet.Net, inputs, outputs int) (*anynet.FC, error) {
	var first *anynet.FC
	prev := inputs
	for i, l := range net {
		fc, ok := l.(*anynet.FC)
		if !ok {
			continue
		}
		if fc.InCount != prev {
			return nil, errors.Errorf("layer %d takes %d inputs, expected %d", i, fc.InCount, prev)
		}
		if first == nil {
			first = fc
		}
		prev = fc.OutCount
	}
	if first == nil {
		return nil, errors.New("network has no layers")
	}
	if prev != outputs {
		return nil, errors.Errorf("network has %d outputs for %d labels", prev, outputs)
	}
	if a, ok := net[len(net)-1].(anynet.Activation); !ok || a != anynet.LogSoftmax {
		return nil, errors.New("network doesn't end in a log-softmax")
	}
	return first, nil
}
