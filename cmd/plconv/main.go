// Command plconv converts a property list from one on-disk format to
// another: binary (bplist00), XML, or old-style OpenStep/GNUStep text.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"howett.net/plist"
)

var formatNames = map[string]int{
	"xml":      plist.XMLFormat,
	"binary":   plist.BinaryFormat,
	"bplist":   plist.BinaryFormat,
	"openstep": plist.OpenStepFormat,
	"gnustep":  plist.GNUStepFormat,
}

type options struct {
	Format  string `short:"f" long:"format" description:"output format: xml, binary, openstep, or gnustep" default:"xml"`
	Indent  string `short:"i" long:"indent" description:"indent string for xml/openstep/gnustep output"`
	Args    struct {
		Input  flags.Filename `positional-arg-name:"input" required:"yes"`
		Output flags.Filename `positional-arg-name:"output" required:"yes"`
	} `positional-args:"yes"`
}

func run() error {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		return err
	}

	format, ok := formatNames[opts.Format]
	if !ok {
		return fmt.Errorf("plconv: unknown output format %q", opts.Format)
	}

	in, err := os.Open(string(opts.Args.Input))
	if err != nil {
		return err
	}
	defer in.Close()

	var val interface{}
	dec := plist.NewDecoder(in)
	if err := dec.Decode(&val); err != nil {
		return fmt.Errorf("plconv: decoding %s: %w", opts.Args.Input, err)
	}

	out, err := os.Create(string(opts.Args.Output))
	if err != nil {
		return err
	}
	defer out.Close()

	enc := plist.NewEncoderForFormat(out, format)
	if opts.Indent != "" {
		enc.Indent(opts.Indent)
	}
	if err := enc.Encode(val); err != nil {
		return fmt.Errorf("plconv: encoding %s: %w", opts.Args.Output, err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
