package shell

import (
	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"

	"github.com/inkocr/inkocr/dataset"
)

func displaySample(c *ishell.Context, s dataset.Sample) {
	c.Printf("[%s]\t%s\n", s.Label, s.ID)
}

func lsCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "ls",
		Help:      "list samples, optionally of the given characters",
		Completer: createLabelCompleter(ctx),
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("ls", flag.ContinueOnError)
			asJSON := flagSet.BoolP("json", "j", ctx.JSONOutput, "json output")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}

			samples := filterSamples(ctx.Service.Samples(), flagSet.Args())
			if *asJSON {
				if err := displaySamplesJSON(c, samples); err != nil {
					c.Err(err)
				}
				return
			}
			for _, s := range samples {
				displaySample(c, s)
			}
		},
	}
}

func filterSamples(samples []dataset.Sample, labels []string) []dataset.Sample {
	if len(labels) == 0 {
		return samples
	}
	wanted := map[string]bool{}
	for _, l := range labels {
		wanted[l] = true
	}
	var res []dataset.Sample
	for _, s := range samples {
		if wanted[s.Label] {
			res = append(res, s)
		}
	}
	return res
}
