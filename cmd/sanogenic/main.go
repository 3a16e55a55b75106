package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"sanogenic/internal/config"
	"sanogenic/internal/gateway/app"
	"sanogenic/internal/logger"
	"sanogenic/internal/orchestrator"
	"sanogenic/internal/task"
	"sanogenic/internal/util/jsonutil"
	"sanogenic/internal/viewstate"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sanogenic", flag.ContinueOnError)
	fs.SetOutput(stderr)
	kindFlag := fs.String("kind", "thought", "task kind: thought | emotion | metaphor")
	text := fs.String("text", "", "thought, emotion or situation text")
	intensity := fs.Int("intensity", 5, "emotion intensity, 1..10")
	details := fs.String("context", "", "optional context for emotion advice")
	diagnostics := fs.Bool("diagnostics", false, "show diagnostic detail on errors")
	fake := fs.Bool("fake", false, "use the offline fake model")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if *fake {
		cfg.LLM.Fake = true
	}
	cfg.Log.Format = "text"
	log := logger.NewWriter(cfg.Log, stderr)

	kind, err := task.ParseKind(*kindFlag)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	req, err := task.Fields{Text: *text, Intensity: *intensity, Context: *details}.For(kind)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	client, err := app.NewClient(cfg.LLM, log)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer client.Close()

	svc := orchestrator.New(app.NewResolver(cfg.LLM), client, orchestrator.WithLogger(log))
	ctrl := viewstate.New(svc, viewstate.WithDiagnostics(*diagnostics))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := ctrl.Submit(ctx, req)
	if err != nil {
		fmt.Fprintln(stderr, viewstate.Message(err, *diagnostics))
		return 1
	}
	out, err := jsonutil.MarshalNoEscapeIndent(res, "", "  ")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, string(out))
	return 0
}
