package shell

import (
	"errors"
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/inkocr/inkocr/archive"
)

const defaultBundleFile = "inkocr-workspace.zip"

func saveAllCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "save-all",
		Help:      "write samples and model to a zip, default " + defaultBundleFile,
		Completer: createFsEntryCompleter(),
		Func: func(c *ishell.Context) {
			z, err := ctx.Service.Bundle()
			if err != nil {
				c.Err(err)
				return
			}
			path := targetPath(c.Args, defaultBundleFile)
			if err := z.WriteFile(path); err != nil {
				c.Err(err)
				return
			}
			c.Printf("workspace saved to %s\n", path)
		},
	}
}

func loadAllCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "load-all",
		Help:      "restore samples and model from a save-all zip",
		Completer: createFsEntryCompleter(),
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(errors.New("missing source file"))
				return
			}
			z := archive.NewZip()
			if err := z.ReadFile(c.Args[0]); err != nil {
				c.Err(fmt.Errorf("failed to read %s: %v", c.Args[0], err))
				return
			}
			if err := ctx.Service.Restore(z); err != nil {
				c.Err(err)
				return
			}
			c.SetPrompt(ctx.prompt())
			c.Printf("restored %d samples, status %s\n", ctx.Service.Store().Len(), ctx.Service.Status())
			ctx.persist()
		},
	}
}
