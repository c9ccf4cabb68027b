package classifier

import "github.com/pkg/errors"

// Options configure the network and the training loop. They are handed to the
// neural network library as they are.
type Options struct {
	// HiddenLayers lists the neuron count of each hidden layer.
	HiddenLayers []int `json:"hiddenLayers" yaml:"hidden_layers"`

	// Iterations caps the number of full passes over the training set.
	Iterations int `json:"iterations" yaml:"iterations"`

	LearningRate float64 `json:"learningRate" yaml:"learning_rate"`

	// ErrorThresh stops training once the average cost drops below it.
	ErrorThresh float64 `json:"errorThresh" yaml:"error_thresh"`
}

// DefaultOptions returns a single hidden layer of 100 neurons trained for at
// most 2000 iterations.
func DefaultOptions() Options {
	return Options{
		HiddenLayers: []int{100},
		Iterations:   2000,
		LearningRate: 0.1,
		ErrorThresh:  0.005,
	}
}

func (o Options) Validate() error {
	for i, n := range o.HiddenLayers {
		if n <= 0 {
			return errors.Errorf("hidden layer %d has %d neurons", i, n)
		}
	}
	if o.Iterations <= 0 {
		return errors.Errorf("iterations must be positive, got %d", o.Iterations)
	}
	if o.LearningRate <= 0 {
		return errors.Errorf("learning rate must be positive, got %v", o.LearningRate)
	}
	if o.ErrorThresh < 0 {
		return errors.Errorf("error threshold can't be negative, got %v", o.ErrorThresh)
	}
	return nil
}
