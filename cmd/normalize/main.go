package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/ogier/pflag"

	"github.com/inkocr/inkocr/canvas"
	"github.com/inkocr/inkocr/input"
)

func main() {
	inputName := flag.StringP("input", "i", "", "png or stroke file to normalize")
	outputName := flag.StringP("output", "o", "", "output file, - for stdout")
	format := flag.StringP("format", "f", "png", "output format: png or json")
	scale := flag.Int("scale", 1, "pixels per cell of the png")
	invert := flag.Bool("invert", false, "input is dark ink on a light background")
	size := flag.Int("canvas", canvas.DefaultSize, "canvas size stroke files are replayed on")
	flag.Parse()

	if *inputName == "" && flag.NArg() > 0 {
		*inputName = flag.Arg(0)
	}

	opts := input.Options{Width: *size, Height: *size, Invert: *invert}
	if err := convert(*inputName, *outputName, *format, *scale, opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func outputPath(inputName, outputName, format string) string {
	if outputName != "" {
		return outputName
	}
	nameOnly := strings.TrimSuffix(inputName, filepath.Ext(inputName))
	return nameOnly + ".28." + format
}

func convert(inputName, outputName, format string, scale int, opts input.Options) error {
	if inputName == "" {
		return errors.New("missing input file")
	}
	if format != "png" && format != "json" {
		return fmt.Errorf("unknown format %q", format)
	}

	vec, err := input.Load(inputName, opts)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path := outputPath(inputName, outputName, format); path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("can't create outputfile %w", err)
		}
		defer f.Close()
		out = f
	}

	if format == "json" {
		return json.NewEncoder(out).Encode(vec)
	}
	return input.WritePNG(out, vec, scale)
}
