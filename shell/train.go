package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"
)

func parseLayers(s string) ([]int, error) {
	var layers []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid layer size %q", part)
		}
		layers = append(layers, n)
	}
	return layers, nil
}

func formatLayers(layers []int) string {
	parts := make([]string, len(layers))
	for i, n := range layers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func trainCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "train",
		Help: "train the network on the collected samples",
		LongHelp: `Usage: train [options]

Options:
  --hidden=<n,n,...>     Hidden layer sizes
  --iterations=<n>       Iteration cap
  --rate=<r>             Learning rate
  --thresh=<e>           Stop once the cost drops below e
  -f, --force            Train below the sample minimum`,
		Func: func(c *ishell.Context) {
			opts := ctx.Service.Options()

			flagSet := flag.NewFlagSet("train", flag.ContinueOnError)
			hidden := flagSet.String("hidden", formatLayers(opts.HiddenLayers), "hidden layer sizes")
			flagSet.IntVar(&opts.Iterations, "iterations", opts.Iterations, "iteration cap")
			flagSet.Float64Var(&opts.LearningRate, "rate", opts.LearningRate, "learning rate")
			flagSet.Float64Var(&opts.ErrorThresh, "thresh", opts.ErrorThresh, "error threshold")
			force := flagSet.BoolP("force", "f", false, "train below the sample minimum")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}

			layers, err := parseLayers(*hidden)
			if err != nil {
				c.Err(err)
				return
			}
			opts.HiddenLayers = layers
			if err := ctx.Service.SetOptions(opts); err != nil {
				c.Err(err)
				return
			}

			if ready, msg := ctx.Service.Store().Readiness(); !ready && !*force {
				c.Err(errors.New(msg))
				return
			}

			if err := ctx.train(c); err != nil {
				c.Err(fmt.Errorf("training failed: %v", err))
				return
			}
			c.Printf("trained on %s\n", strings.Join(ctx.Service.ModelCharacters(), " "))
			ctx.persist()
		},
	}
}

func (ctx *ShellCtxt) train(c *ishell.Context) error {
	bar := c.ProgressBar()
	bar.Prefix("training ")
	bar.Start()
	ctx.Service.OnProgress(func(p float64) {
		bar.Progress(int(p * 100))
	})
	defer ctx.Service.OnProgress(nil)

	err := ctx.Service.Train(context.Background())
	bar.Stop()
	c.SetPrompt(ctx.prompt())
	return err
}
