// Command setlist analyses tracks and renders them through the effects
// engine.
//
// Usage:
//
//	setlist analyze [-config file] [-progress] <file.wav>
//	setlist render  [-config file] [-set name=value ...] [-tail sec] [-bits n] <in.wav> <out.wav>
//	setlist params
//
// Settings come from defaults, the optional config file and SETLIST_*
// environment variables (e.g. SETLIST_ANALYSIS_MAX_SECONDS=30).
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	switch args[0] {
	case "analyze", "analyse":
		return runAnalyze(ctx, args[1:], stdout, stderr)
	case "render":
		return runRender(args[1:], stdout, stderr)
	case "params":
		return runParams(stdout)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "error: unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: setlist <command> [flags] [args]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  analyze  estimate key and chord timeline of a WAV file\n")
	fmt.Fprintf(w, "  render   run a WAV file through the effects engine\n")
	fmt.Fprintf(w, "  params   list engine parameters\n")
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  setlist analyze song.wav\n")
	fmt.Fprintf(w, "  setlist render -set pitch=-2 -set delayTime=0.3 song.wav out.wav\n")
}
