package shell

import (
	"errors"
	"fmt"

	"github.com/abiosoft/ishell"
	flag "github.com/ogier/pflag"

	"github.com/inkocr/inkocr/classifier"
	"github.com/inkocr/inkocr/input"
)

type recognitionJSON struct {
	File string `json:"file"`
	*classifier.Result
}

func recognizeCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "recognize",
		Help:      "recognize the character drawn in each file",
		Completer: createFsEntryCompleter(),
		Func: func(c *ishell.Context) {
			flagSet := flag.NewFlagSet("recognize", flag.ContinueOnError)
			invert := flagSet.BoolP("invert", "i", false, "images are dark ink on a light background")
			asJSON := flagSet.BoolP("json", "j", ctx.JSONOutput, "json output")
			if err := flagSet.Parse(c.Args); err != nil {
				if err != flag.ErrHelp {
					c.Err(err)
				}
				return
			}
			argRest := flagSet.Args()
			if len(argRest) == 0 {
				c.Err(errors.New("missing source file"))
				return
			}
			if !ctx.Service.IsTrained() {
				c.Err(errors.New("model not trained yet, run train first"))
				return
			}

			opts := ctx.inputOptions(*invert)
			var results []recognitionJSON
			for _, path := range argRest {
				vec, err := input.Load(path, opts)
				if err != nil {
					c.Err(fmt.Errorf("failed to read %s: %v", path, err))
					continue
				}
				res, err := ctx.Service.Recognize(vec)
				if err != nil {
					c.Err(err)
					return
				}
				if *asJSON {
					results = append(results, recognitionJSON{File: path, Result: res})
					continue
				}
				displayResult(c, path, res)
			}

			if *asJSON {
				if err := displayJSON(c, results); err != nil {
					c.Err(err)
				}
			}
		},
	}
}

func displayResult(c *ishell.Context, path string, res *classifier.Result) {
	c.Printf("%s: %s (%.1f%%)\n", path, res.Character, res.Confidence*100)
	for _, alt := range res.Alternatives {
		c.Printf("\t%s (%.1f%%)\n", alt.Character, alt.Confidence*100)
	}
}
