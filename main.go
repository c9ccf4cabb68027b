package main

import (
	"fmt"
	"os"

	flag "github.com/ogier/pflag"

	"github.com/inkocr/inkocr/config"
	"github.com/inkocr/inkocr/log"
	"github.com/inkocr/inkocr/ocr"
	"github.com/inkocr/inkocr/shell"
	"github.com/inkocr/inkocr/version"
)

func loadConfig(path, port string) (config.Config, error) {
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if port != "" {
		cfg.Server.Port = port
	}
	return cfg, nil
}

func main() {
	configPath := flag.StringP("config", "c", "", "config file (default $INKOCR_CONFIG or the user config dir)")
	serverMode := flag.BoolP("server", "s", false, "serve the drawing page and the http api")
	port := flag.StringP("port", "p", "", "http port, overrides the config")
	jsonOutput := flag.BoolP("json", "j", false, "json output in shell commands")
	noLoad := flag.Bool("fresh", false, "don't load the autosaved workspace")
	showVersion := flag.BoolP("version", "v", false, "print the version")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Version)
		return
	}

	log.InitLog()

	cfg, err := loadConfig(*configPath, *port)
	if err != nil {
		log.Error.Fatalln(err)
	}

	svc := ocr.NewService(cfg.Network)
	if !*noLoad {
		if err := svc.Load(cfg.TrainingDataPath(), cfg.ModelPath()); err != nil {
			log.Warning.Printf("can't restore workspace from %s: %v", cfg.DataDir, err)
		}
	}

	persist := func() {
		if !cfg.Autosave {
			return
		}
		if err := svc.Save(cfg.TrainingDataPath(), cfg.ModelPath()); err != nil {
			log.Error.Println("autosave failed:", err)
		}
	}

	if *serverMode {
		runServerMode(svc, cfg, persist)
		return
	}

	ctx := &shell.ShellCtxt{
		Service:    svc,
		Cfg:        cfg,
		JSONOutput: *jsonOutput,
	}
	if err := shell.RunShell(ctx, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "Error: ", err)
		os.Exit(1)
	}
}
