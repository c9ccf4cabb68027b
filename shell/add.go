package shell

import (
	"errors"
	"fmt"

	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"

	"github.com/inkocr/inkocr/dataset"
	"github.com/inkocr/inkocr/input"
)

func (ctx *ShellCtxt) addFile(path, label string, opts input.Options) (dataset.Sample, error) {
	vec, err := input.Load(path, opts)
	if err != nil {
		return dataset.Sample{}, err
	}
	return ctx.Service.AddSample(vec, label)
}

func addCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "add",
		Help:      "add drawings as samples of a character, usage: add [--invert] <label> <file>...",
		Completer: createFsEntryCompleter(),
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("add", flag.ContinueOnError)
			invert := flagSet.BoolP("invert", "i", false, "images are dark ink on a light background")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}
			argRest := flagSet.Args()
			if len(argRest) < 2 {
				c.Err(errors.New("missing label or file"))
				return
			}

			label := argRest[0]
			opts := ctx.inputOptions(*invert)
			added := 0
			for _, path := range argRest[1:] {
				sample, err := ctx.addFile(path, label, opts)
				if err != nil {
					c.Err(fmt.Errorf("failed to add %s: %v", path, err))
					continue
				}
				c.Printf("added %s as %q [%s]\n", path, sample.Label, sample.ID)
				added++
			}
			if added > 0 {
				ctx.persist()
				c.SetPrompt(ctx.prompt())
			}

			_, msg := ctx.Service.Store().Readiness()
			c.Printf("%d samples. %s\n", ctx.Service.Store().Len(), msg)
		},
	}
}
