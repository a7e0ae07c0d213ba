package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doc2quiz <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Convert .doc/.docx quizzes to GIFT or Hemis")
	fmt.Fprintln(w, "  serve       Run the HTTP conversion service")
	fmt.Fprintln(w, "  doctor      Check document converter and browser setup")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'doc2quiz help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doc2quiz convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert question tables in Word documents to quiz text.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    .doc/.docx file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -f, --format <s>          Quiz format: gift, hemis (default gift)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-document timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --workspace <dir>     Parent directory for scratch workspaces")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document converter:")
	fmt.Fprintln(w, "      --renderer <s>        auto, libreoffice, word (default auto)")
	fmt.Fprintln(w, "      --soffice <path>      LibreOffice binary")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Review sheet:")
	fmt.Fprintln(w, "      --proof               Write <name>.proof.html next to each quiz")
	fmt.Fprintln(w, "      --proof-pdf           Also write <name>.proof.pdf (needs Chrome)")
	fmt.Fprintln(w, "      --proof-style <s>     Style name or CSS file path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show timing and pipeline logs")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doc2quiz serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP conversion service.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Routes:")
	fmt.Fprintln(w, "  POST /upload          multipart 'file' (.doc/.docx), optional 'format'")
	fmt.Fprintln(w, "  GET  /status/{id}     job status")
	fmt.Fprintln(w, "  GET  /download/{id}   quiz text once completed")
	fmt.Fprintln(w, "  GET  /stats           completed job count")
	fmt.Fprintln(w, "  GET  /health          liveness")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address or port (default :8080)")
	fmt.Fprintln(w, "      --database-url <url>  PostgreSQL URL (default: in-memory jobs)")
	fmt.Fprintln(w, "      --env-file <path>     Dotenv file (default .env)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel conversions (0 = auto)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --renderer <s>        auto, libreoffice, word")
	fmt.Fprintln(w, "      --soffice <path>      LibreOffice binary")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: doc2quiz doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check document converters, Chrome and the temp directory.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: doc2quiz version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: doc2quiz help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
