package shell

import (
	"errors"
	"fmt"
	"os"

	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"
)

func saveDataCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "save-data",
		Help:      "write the samples as json, default " + defaultDataFile,
		Completer: createFsEntryCompleter(),
		Func: func(c *ishell.Context) {
			if !ctx.Service.HasData() {
				c.Err(errors.New("no samples to save"))
				return
			}
			path := targetPath(c.Args, defaultDataFile)
			if err := ctx.Service.Store().Save(path); err != nil {
				c.Err(err)
				return
			}
			c.Printf("%d samples saved to %s\n", ctx.Service.Store().Len(), path)
		},
	}
}

func loadDataCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "load-data",
		Help:      "replace the samples with those of a save-data file",
		Completer: createFsEntryCompleter(),
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(errors.New("missing source file"))
				return
			}
			data, err := os.ReadFile(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			if err := ctx.Service.ImportTrainingData(data); err != nil {
				c.Err(fmt.Errorf("failed to load training data: %v", err))
				return
			}
			c.SetPrompt(ctx.prompt())
			c.Printf("loaded %d samples\n", ctx.Service.Store().Len())
			ctx.persist()
		},
	}
}

func clearCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "clear",
		Help: "delete every sample",
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("clear", flag.ContinueOnError)
			yes := flagSet.BoolP("yes", "y", false, "don't ask for confirmation")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}

			if !*yes {
				c.Printf("delete all %d samples? [y/N] ", ctx.Service.Store().Len())
				if answer := c.ReadLine(); answer != "y" && answer != "Y" {
					c.Println("aborted")
					return
				}
			}
			ctx.Service.ClearData()
			c.SetPrompt(ctx.prompt())
			c.Println("all samples deleted")
			ctx.persist()
		},
	}
}
