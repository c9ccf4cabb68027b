package shell

import (
	"errors"
	"fmt"
	"os"

	"github.com/abiosoft/ishell"
)

const (
	defaultModelFile = "ocr-model.json"
	defaultDataFile  = "ocr-training-data.json"
)

func targetPath(args []string, fallback string) string {
	if len(args) > 0 {
		return args[0]
	}
	return fallback
}

func saveModelCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "save-model",
		Help:      "write the trained model as json, default " + defaultModelFile,
		Completer: createFsEntryCompleter(),
		Func: func(c *ishell.Context) {
			data, err := ctx.Service.ExportModel()
			if err != nil {
				c.Err(err)
				return
			}
			path := targetPath(c.Args, defaultModelFile)
			if err := os.WriteFile(path, data, 0600); err != nil {
				c.Err(err)
				return
			}
			c.Printf("model saved to %s\n", path)
		},
	}
}

func loadModelCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "load-model",
		Help:      "load a model written by save-model",
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
			if err := ctx.Service.ImportModel(data); err != nil {
				c.Err(fmt.Errorf("failed to load model: %v", err))
				return
			}
			c.SetPrompt(ctx.prompt())
			c.Printf("model loaded, recognizes %d characters\n", len(ctx.Service.ModelCharacters()))
			ctx.persist()
		},
	}
}
