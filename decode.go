package main

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kintel/aisdecoder/decoder"
)

type decodeOptions struct {
	pretty  bool
	noColor bool
	errors  bool // report failed lines
}

type decodeSummary struct {
	lines    int
	messages int
	failures map[string]int
}

func newDecodeCmd() *cobra.Command {
	var opts decodeOptions
	cmd := &cobra.Command{
		Use:   "decode [file...]",
		Short: "Decode sentences from files or stdin to JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			d := decoder.New()
			sum := &decodeSummary{failures: map[string]int{}}
			if len(args) == 0 {
				args = []string{"-"}
			}
			for _, name := range args {
				if err := decodeFile(name, d, out, errOut, opts, sum); err != nil {
					return err
				}
			}
			printSummary(errOut, sum, opts)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored diagnostics")
	cmd.Flags().BoolVar(&opts.errors, "errors", true, "Report lines that fail to decode")
	return cmd
}

func decodeFile(name string, d *decoder.Decoder, out, errOut io.Writer, opts decodeOptions, sum *decodeSummary) error {
	if name == "-" {
		return decodeStream(os.Stdin, "stdin", d, out, errOut, opts, sum)
	}
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", name)
	}
	defer f.Close()
	return decodeStream(f, name, d, out, errOut, opts, sum)
}

func decodeStream(r io.Reader, name string, d *decoder.Decoder, out, errOut io.Writer, opts decodeOptions, sum *decodeSummary) error {
	enc := json.NewEncoder(out)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	red := color.New(color.FgRed)
	if opts.noColor {
		red.DisableColor()
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		sum.lines++
		msg, err := d.Decode(line)
		if err != nil {
			kind := decoder.ErrorKind(err)
			sum.failures[kind]++
			if opts.errors {
				red.Fprintf(errOut, "%s:%d: %s: %v\n", name, lineNo, kind, err)
			}
			continue
		}
		if msg == nil {
			continue
		}
		sum.messages++
		if err := enc.Encode(msg); err != nil {
			return errors.Wrap(err, "failed to write output")
		}
	}
	return errors.Wrapf(scanner.Err(), "failed to read %s", name)
}

func printSummary(w io.Writer, sum *decodeSummary, opts decodeOptions) {
	c := color.New(color.FgGreen)
	if len(sum.failures) > 0 {
		c = color.New(color.FgYellow)
	}
	if opts.noColor {
		c.DisableColor()
	}
	c.Fprintf(w, "%d lines, %d messages", sum.lines, sum.messages)
	for _, kind := range []string{
		decoder.KindMalformed, decoder.KindChecksum, decoder.KindTruncated,
		decoder.KindUnsupported, decoder.KindNotImplemented, decoder.KindOther,
	} {
		if n := sum.failures[kind]; n > 0 {
			c.Fprintf(w, ", %d %s", n, kind)
		}
	}
	c.Fprintln(w)
}
