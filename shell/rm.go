package shell

import (
	"errors"
	"fmt"

	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"
)

func rmCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "rm",
		Help:      "delete samples by id, or every sample of a character with --label",
		Completer: createIDCompleter(ctx),
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("rm", flag.ContinueOnError)
			byLabel := flagSet.BoolP("label", "l", false, "arguments are characters, not ids")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}
			argRest := flagSet.Args()
			if len(argRest) < 1 {
				c.Err(errors.New("missing param"))
				return
			}

			targets := argRest
			if *byLabel {
				targets = nil
				wanted := map[string]bool{}
				for _, l := range argRest {
					wanted[l] = true
				}
				for _, s := range ctx.Service.Samples() {
					if wanted[s.Label] {
						targets = append(targets, s.ID)
					}
				}
			}

			removed := 0
			for _, id := range targets {
				if !ctx.Service.RemoveSample(id) {
					c.Err(fmt.Errorf("no sample %s", id))
					continue
				}
				c.Println("deleting: ", id)
				removed++
			}
			if removed > 0 {
				ctx.persist()
				c.SetPrompt(ctx.prompt())
			}
		},
	}
}
