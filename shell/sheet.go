package shell

import (
	"errors"

	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"

	"github.com/inkocr/inkocr/sheet"
)

func sheetCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "sheet",
		Help:      "render the samples as a pdf grid, usage: sheet [options] <out.pdf> [label]...",
		Completer: createFsEntryCompleter(),
		Func: func(c *ishell.Context) {
			opts := sheet.DefaultOptions()
			flagSet := flag.NewFlagSet("sheet", flag.ContinueOnError)
			flagSet.IntVarP(&opts.Columns, "columns", "c", opts.Columns, "thumbnails per row")
			flagSet.StringVarP(&opts.Title, "title", "t", opts.Title, "page title")
			noBorders := flagSet.Bool("no-borders", false, "don't frame the cells")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}
			argRest := flagSet.Args()
			if len(argRest) == 0 {
				c.Err(errors.New("missing output file"))
				return
			}
			opts.Borders = !*noBorders

			samples := filterSamples(ctx.Service.Samples(), argRest[1:])
			if len(samples) == 0 {
				c.Err(errors.New("no samples"))
				return
			}
			if err := sheet.New(opts).WriteFile(argRest[0], samples); err != nil {
				c.Err(err)
				return
			}
			c.Printf("%d samples written to %s\n", len(samples), argRest[0])
		},
	}
}
