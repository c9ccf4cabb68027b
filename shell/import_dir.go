package shell

import (
	"context"
	"errors"

	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"
)

func importDirCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "import-dir",
		Help:      "add every image of <dir>/<label>/ as a sample of label",
		Completer: createFsEntryCompleter(),
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("import-dir", flag.ContinueOnError)
			invert := flagSet.BoolP("invert", "i", false, "images are dark ink on a light background")
			jobs := flagSet.Int64P("jobs", "j", ctx.Cfg.ImportConcurrency, "files normalized in parallel")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}
			argRest := flagSet.Args()
			if len(argRest) != 1 {
				c.Err(errors.New("missing directory"))
				return
			}

			c.Printf("importing: [%s]...\n", argRest[0])
			report, err := ctx.Service.ImportDir(context.Background(), argRest[0], ctx.inputOptions(*invert), *jobs)
			if report != nil && report.Added > 0 {
				ctx.persist()
				c.SetPrompt(ctx.prompt())
			}
			if err != nil {
				c.Err(err)
				return
			}
			for _, path := range report.Skipped {
				c.Printf("skipped blank %s\n", path)
			}
			c.Printf("added %d samples\n", report.Added)
		},
	}
}
