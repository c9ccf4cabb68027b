package shell

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/inkocr/inkocr/config"
	"github.com/inkocr/inkocr/input"
	"github.com/inkocr/inkocr/log"
	"github.com/inkocr/inkocr/ocr"
)

type ShellCtxt struct {
	Service    *ocr.Service
	Cfg        config.Config
	JSONOutput bool
}

func (ctx *ShellCtxt) prompt() string {
	return "[inkocr " + string(ctx.Service.Status()) + "]>"
}

func (ctx *ShellCtxt) inputOptions(invert bool) input.Options {
	return input.Options{
		Width:  ctx.Cfg.Canvas.Width,
		Height: ctx.Cfg.Canvas.Height,
		Invert: invert,
	}
}

// persist autosaves the workspace after a change.
func (ctx *ShellCtxt) persist() {
	if !ctx.Cfg.Autosave || ctx.Cfg.DataDir == "" {
		return
	}
	if err := ctx.Service.Save(ctx.Cfg.TrainingDataPath(), ctx.Cfg.ModelPath()); err != nil {
		log.Error.Println("autosave failed:", err)
	}
}

// createFsEntryCompleter completes local paths.
func createFsEntryCompleter() func([]string) []string {
	return func(args []string) []string {
		prefix := ""
		if len(args) > 0 {
			prefix = args[len(args)-1]
		}
		dir := filepath.Dir(prefix)
		if !strings.Contains(prefix, string(filepath.Separator)) {
			dir = "."
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil
		}
		var res []string
		for _, e := range entries {
			name := e.Name()
			if dir != "." {
				name = filepath.Join(dir, name)
			}
			if e.IsDir() {
				name += string(filepath.Separator)
			}
			if strings.HasPrefix(name, prefix) {
				res = append(res, name)
			}
		}
		return res
	}
}

func createLabelCompleter(ctx *ShellCtxt) func([]string) []string {
	return func(args []string) []string {
		return ctx.Service.Characters()
	}
}

func createIDCompleter(ctx *ShellCtxt) func([]string) []string {
	return func(args []string) []string {
		samples := ctx.Service.Samples()
		res := make([]string, len(samples))
		for i, s := range samples {
			res[i] = s.ID
		}
		return res
	}
}

func setCustomCompleter(shell *ishell.Shell) {
	cmdCompleter := make(cmdToCompleter)
	for _, cmd := range shell.Cmds() {
		cmdCompleter[cmd.Name] = cmd.Completer
	}

	completer := shellPathCompleter{cmdCompleter}
	shell.CustomCompleter(completer)
}

type cmdToCompleter map[string]func([]string) []string

type shellPathCompleter struct {
	cmdCompleter cmdToCompleter
}

func (s shellPathCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	tokens := strings.Fields(string(line[:pos]))
	if len(tokens) == 0 || (len(tokens) == 1 && !strings.HasSuffix(string(line[:pos]), " ")) {
		var prefix string
		if len(tokens) == 1 {
			prefix = tokens[0]
		}
		for name := range s.cmdCompleter {
			if strings.HasPrefix(name, prefix) {
				newLine = append(newLine, []rune(name[len(prefix):]))
			}
		}
		return newLine, len(prefix)
	}

	completer, ok := s.cmdCompleter[tokens[0]]
	if !ok || completer == nil {
		return nil, 0
	}

	last := ""
	if !strings.HasSuffix(string(line[:pos]), " ") {
		last = tokens[len(tokens)-1]
	}
	for _, option := range completer(append(tokens[1:], last)) {
		if strings.HasPrefix(option, last) {
			newLine = append(newLine, []rune(option[len(last):]))
		}
	}
	return newLine, len(last)
}

func commands(ctx *ShellCtxt) []*ishell.Cmd {
	return []*ishell.Cmd{
		addCmd(ctx),
		rmCmd(ctx),
		lsCmd(ctx),
		countsCmd(ctx),
		statusCmd(ctx),
		trainCmd(ctx),
		recognizeCmd(ctx),
		saveModelCmd(ctx),
		loadModelCmd(ctx),
		saveDataCmd(ctx),
		loadDataCmd(ctx),
		clearCmd(ctx),
		sheetCmd(ctx),
		importDirCmd(ctx),
		saveAllCmd(ctx),
		loadAllCmd(ctx),
		tokenCmd(ctx),
		versionCmd(),
	}
}

// RunShell starts the interactive shell, or runs args as a single command.
func RunShell(ctx *ShellCtxt, args []string) error {
	shell := ishell.New()
	for _, cmd := range commands(ctx) {
		shell.AddCmd(cmd)
	}
	setCustomCompleter(shell)

	if len(args) > 0 {
		return shell.Process(args...)
	}

	shell.Println("inkocr: draw, train and recognize characters. type help for commands")
	shell.SetPrompt(ctx.prompt())
	shell.Run()
	return nil
}
