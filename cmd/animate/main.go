// animate turns a prompt into a rendered Manim video from the terminal.
//
//	animate "A DNA helix rotating"
//	animate --explain "Pythagorean theorem proof"
//	animate --history
//	animate --delete <id>
//	animate --clear
//
// GEMINI_API_KEY, ANIMATOR_TOKEN and ANIMATOR_URL supply defaults for the
// matching flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/vitovidale/ai-animator/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	backendURL string
	token      string
	apiKey     string
	model      string
	history    bool
	deleteID   string
	clear      bool
	explain    bool
	timeout    time.Duration
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("animate", pflag.ContinueOnError)
	flagSet.StringVar(&opts.backendURL, "backend", envOr("ANIMATOR_URL", "http://localhost:5001"), "animator backend base URL")
	flagSet.StringVar(&opts.token, "token", os.Getenv("ANIMATOR_TOKEN"), "bearer token for the backend")
	flagSet.StringVar(&opts.apiKey, "api-key", os.Getenv("GEMINI_API_KEY"), "Generative Language API key")
	flagSet.StringVar(&opts.model, "model", client.DefaultGeminiModel, "Gemini model name")
	flagSet.BoolVar(&opts.history, "history", false, "list previous creations, newest first")
	flagSet.StringVar(&opts.deleteID, "delete", "", "delete the creation with this id")
	flagSet.BoolVar(&opts.clear, "clear", false, "delete every creation")
	flagSet.BoolVar(&opts.explain, "explain", false, "explain the generated code after rendering")
	flagSet.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "overall deadline")
	flagSet.SetOutput(stdout)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	backend := client.NewBackendClient(opts.backendURL, opts.token)
	switch {
	case opts.history:
		return printHistory(ctx, backend, stdout)
	case opts.deleteID != "":
		if err := backend.DeleteCreation(ctx, opts.deleteID); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted %s\n", opts.deleteID)
		return nil
	case opts.clear:
		n, err := backend.ClearHistory(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "cleared %d creations\n", n)
		return nil
	}

	prompt := strings.TrimSpace(strings.Join(flagSet.Args(), " "))
	if prompt == "" {
		return errors.New("a prompt is required; try: animate \"A DNA helix rotating\"")
	}
	if opts.apiKey == "" {
		return errors.New("no API key; set GEMINI_API_KEY or pass --api-key")
	}

	gemini := client.NewGeminiClient(opts.apiKey)
	gemini.Model = opts.model

	session := client.NewSession()
	fmt.Fprintln(stdout, "generating code...")
	videoURL, err := session.Run(ctx, gemini, backend, prompt)
	if err != nil {
		return err
	}
	snap := session.Snapshot()
	fmt.Fprintf(stdout, "\n%s\n\nvideo: %s\n", snap.Code, videoURL)

	if opts.explain {
		explanation, err := gemini.ExplainCode(ctx, snap.Code)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\n%s\n", explanation)
	}
	return nil
}

func printHistory(ctx context.Context, backend *client.BackendClient, stdout io.Writer) error {
	creations, err := backend.History(ctx)
	if err != nil {
		return err
	}
	if len(creations) == 0 {
		fmt.Fprintln(stdout, "no creations yet")
		return nil
	}
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tPROMPT\tVIDEO")
	for _, c := range creations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.CreatedAt.Local().Format(time.DateTime), c.Prompt, c.VideoURL)
	}
	return w.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
