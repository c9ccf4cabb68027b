// Package classifier adapts an anynet feed-forward network to labeled
// character vectors: one-hot encoding, the training loop, inference and the
// JSON model file.
package classifier

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyff"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"

	"github.com/inkocr/inkocr/log"
)

const (
	// momentum applied to every gradient step
	momentum = 0.1

	// progress is logged every logPeriod iterations
	logPeriod = 10
)

var (
	ErrNoSamples      = errors.New("no training samples available")
	ErrNeedMoreLabels = errors.New("need at least 2 different characters to train")
)

// Example is one training input with its label.
type Example struct {
	Input []float64
	Label string
}

// ProgressFunc receives the fraction of the iteration budget spent, in [0,1].
type ProgressFunc func(progress float64)

// Labels returns the sorted distinct labels of the examples.
func Labels(examples []Example) []string {
	seen := map[string]struct{}{}
	var labels []string
	for _, ex := range examples {
		if _, ok := seen[ex.Label]; ok {
			continue
		}
		seen[ex.Label] = struct{}{}
		labels = append(labels, ex.Label)
	}
	sort.Strings(labels)
	return labels
}

// OneHot encodes label against labels. Unknown labels encode to all zeros.
func OneHot(labels []string, label string) []float64 {
	out := make([]float64, len(labels))
	for i, l := range labels {
		if l == label {
			out[i] = 1
		}
	}
	return out
}

func newNetwork(c anyvec.Creator, inputSize int, hidden []int, outputs int) anynet.Net {
	var net anynet.Net
	prev := inputSize
	for _, n := range hidden {
		net = append(net, anynet.NewFC(c, prev, n), anynet.Sigmoid)
		prev = n
	}
	return append(net, anynet.NewFC(c, prev, outputs), anynet.LogSoftmax)
}

// Train builds a fresh network and fits it to the examples. It returns when
// the iteration cap or the error threshold is reached, or with ctx.Err() when
// the context is canceled first.
func Train(ctx context.Context, examples []Example, opts Options, progress ProgressFunc) (*Model, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(examples) == 0 {
		return nil, ErrNoSamples
	}
	labels := Labels(examples)
	if len(labels) < 2 {
		return nil, ErrNeedMoreLabels
	}

	inputSize := len(examples[0].Input)
	if inputSize == 0 {
		return nil, errors.New("empty input vector")
	}

	c := anyvec64.CurrentCreator()
	samples := make(anyff.SliceSampleList, len(examples))
	for i, ex := range examples {
		if len(ex.Input) != inputSize {
			return nil, errors.Errorf("sample %d has %d inputs, expected %d", i, len(ex.Input), inputSize)
		}
		samples[i] = &anyff.Sample{
			Input:  c.MakeVectorData(c.MakeNumericList(ex.Input)),
			Output: c.MakeVectorData(c.MakeNumericList(OneHot(labels, ex.Label))),
		}
	}

	net := newNetwork(c, inputSize, opts.HiddenLayers, len(labels))
	t := &anyff.Trainer{
		Net:     net,
		Cost:    anynet.DotCost{},
		Params:  net.Parameters(),
		Average: true,
	}

	report := func(p float64) {
		if progress != nil {
			progress(p)
		}
	}

	stop := make(chan struct{})
	var once sync.Once
	halt := func() { once.Do(func() { close(stop) }) }

	var iteration int
	var lastCost float64
	s := &anysgd.SGD{
		Fetcher:     t,
		Gradienter:  t,
		Transformer: &anysgd.Momentum{Momentum: momentum},
		Samples:     samples,
		Rater:       anysgd.ConstRater(opts.LearningRate),
		StatusFunc: func(b anysgd.Batch) {
			if iteration > 0 {
				lastCost = numericFloat(t.LastCost)
				if iteration%logPeriod == 0 {
					log.Trace.Printf("iteration %d: cost=%v", iteration, lastCost)
				}
				if lastCost < opts.ErrorThresh {
					log.Trace.Printf("cost %v below threshold after %d iterations", lastCost, iteration)
					halt()
					return
				}
			}
			if iteration >= opts.Iterations || ctx.Err() != nil {
				halt()
				return
			}
			report(float64(iteration) / float64(opts.Iterations))
			iteration++
		},
	}

	report(0)
	if err := s.Run(stop); err != nil {
		return nil, errors.Wrap(err, "training failed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report(1)

	log.Trace.Printf("trained %d labels on %d samples in %d iterations, cost=%v",
		len(labels), len(examples), iteration, lastCost)

	return &Model{
		labels:    labels,
		inputSize: inputSize,
		opts:      opts,
		net:       net,
		creator:   c,
	}, nil
}

func numericFloat(n anyvec.Numeric) float64 {
	switch n := n.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	default:
		return math.Inf(1)
	}
}

func vectorFloats(v anyvec.Vector) []float64 {
	switch data := v.Data().(type) {
	case []float64:
		return data
	case []float32:
		res := make([]float64, len(data))
		for i, x := range data {
			res[i] = float64(x)
		}
		return res
	default:
		return nil
	}
}
