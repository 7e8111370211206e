package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dealerdocs <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  issue      Issue a quotation or invoice number")
	fmt.Fprintln(w, "  parse      Parse formatted identifiers")
	fmt.Fprintln(w, "  style      Resolve a company's document style")
	fmt.Fprintln(w, "  logo       Look up a manufacturer logo")
	fmt.Fprintln(w, "  policy     Show the export quality policy")
	fmt.Fprintln(w, "  render     Render documents to PDF, PNG, JPEG or HTML")
	fmt.Fprintln(w, "  serve      Run the preview HTTP server")
	fmt.Fprintln(w, "  doctor     Check Chrome, storage and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'dealerdocs help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
}

func printRendererFlags(w io.Writer) {
	fmt.Fprintln(w, "Renderer:")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom template family directory")
	fmt.Fprintln(w, "      --logo-base-url <url> Prefix for manufacturer logo paths")
	fmt.Fprintln(w, "      --browser-bin <path>  Chrome/Chromium binary")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel renderers (0 = auto, max 8)")
}

// printIssueUsage prints usage for the issue command.
func printIssueUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dealerdocs issue <quote|invoice> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Issue a Q-###### or I-###### identifier. By default the serial comes")
	fmt.Fprintln(w, "from the clock and is not guaranteed unique.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -s, --sequential          Next value of the counter (redis.url or store.dsn)")
	fmt.Fprintln(w, "  -r, --reserve             Record the identifier; retry on collision (store.dsn)")
	fmt.Fprintln(w, "      --json                Print JSON")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printParseUsage prints usage for the parse command.
func printParseUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dealerdocs parse <identifier>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Split identifiers such as Q-000123 into kind and serial.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -l, --lookup              Show registry records (store.dsn)")
	fmt.Fprintln(w, "      --json                Print JSON")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printStyleUsage prints usage for the style command.
func printStyleUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dealerdocs style <company.yaml|-> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Resolve a company record's pdf* overrides into the complete style.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print JSON instead of YAML")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printLogoUsage prints usage for the logo command.
func printLogoUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dealerdocs logo <manufacturer>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Look up logo paths. Names match exactly, including Arabic spellings.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print JSON")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printPolicyUsage prints usage for the policy command.
func printPolicyUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dealerdocs policy [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show the page geometry, scales and timeout every export uses.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print JSON")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dealerdocs render <document.yaml>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render quotation and invoice records.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (single input) or directory")
	fmt.Fprintln(w, "  -f, --format <s>          pdf, png, jpeg or html (default pdf)")
	fmt.Fprintln(w, "  -r, --reserve             Reserve numbers for documents without one (store.dsn)")
	fmt.Fprintln(w)
	printRendererFlags(w)
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dealerdocs serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve identifiers, styles, logos and document rendering over HTTP.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default preview.addr)")
	fmt.Fprintln(w)
	printRendererFlags(w)
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dealerdocs doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the configured store and Redis, and the environment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print JSON")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// commandUsage maps command names to their usage printers.
var commandUsage = map[string]func(io.Writer){
	"issue":  printIssueUsage,
	"parse":  printParseUsage,
	"style":  printStyleUsage,
	"logo":   printLogoUsage,
	"policy": printPolicyUsage,
	"render": printRenderUsage,
	"serve":  printServeUsage,
	"doctor": printDoctorUsage,
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	if usage, ok := commandUsage[args[0]]; ok {
		usage(env.Stdout)
		return ExitSuccess
	}
	switch args[0] {
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: dealerdocs version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: dealerdocs help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
