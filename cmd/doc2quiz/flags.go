package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// rendererFlags select the office-to-HTML backend.
type rendererFlags struct {
	backend string
	soffice string
}

// proofFlags control the review sheet written next to each quiz.
type proofFlags struct {
	enabled bool
	pdf     bool
	style   string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common    commonFlags
	output    string
	format    string
	workers   int
	timeout   string
	workspace string
	renderer  rendererFlags
	proof     proofFlags
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common      commonFlags
	addr        string
	databaseURL string
	envFile     string
	workers     int
	renderer    rendererFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and debug logs")
}

// addRendererFlags adds renderer selection flags to a FlagSet.
func addRendererFlags(fs *flag.FlagSet, f *rendererFlags) {
	fs.StringVar(&f.backend, "renderer", "", "document converter: auto, libreoffice, word")
	fs.StringVar(&f.soffice, "soffice", "", "LibreOffice binary path")
}

// addProofFlags adds review sheet flags to a FlagSet.
func addProofFlags(fs *flag.FlagSet, f *proofFlags) {
	fs.BoolVar(&f.enabled, "proof", false, "write an HTML review sheet next to each quiz")
	fs.BoolVar(&f.pdf, "proof-pdf", false, "also print the review sheet to PDF (implies --proof)")
	fs.StringVar(&f.style, "proof-style", "", "review sheet style name or CSS file path")
}

// registerConvertFlags registers every convert flag into fs.
// Shared by parseConvertFlags and shell completion.
func registerConvertFlags(fs *flag.FlagSet, f *convertFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.format, "format", "f", "", "quiz format: gift, hemis")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.workspace, "workspace", "", "parent directory for scratch workspaces")

	addCommonFlags(fs, &f.common)
	addRendererFlags(fs, &f.renderer)
	addProofFlags(fs, &f.proof)
}

// registerServeFlags registers every serve flag into fs.
func registerServeFlags(fs *flag.FlagSet, f *serveFlags) {
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address or port (default :8080)")
	fs.StringVar(&f.databaseURL, "database-url", "", "PostgreSQL URL (empty = in-memory jobs)")
	fs.StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before configuration")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel conversions (0 = auto)")

	addCommonFlags(fs, &f.common)
	addRendererFlags(fs, &f.renderer)
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}
	registerConvertFlags(fs, f)
	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if f.proof.pdf {
		f.proof.enabled = true
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}
	registerServeFlags(fs, f)
	fs.Usage = func() { printServeUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
