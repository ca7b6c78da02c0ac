// Package main provides the chatmd command, which converts a markdown file
// (or stdin) into a chat dialect.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/euforicio/chatmd/internal/buildinfo"
	"github.com/euforicio/chatmd/internal/config"
	"github.com/euforicio/chatmd/internal/converter"
	"github.com/euforicio/chatmd/internal/watch"
)

func main() {
	cfg := config.Default()
	config.ApplyEnvOverrides(&cfg)

	flags := pflag.NewFlagSet("chatmd", pflag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: chatmd [flags] [file.md | -]\n\n")
		flags.PrintDefaults()
	}
	config.RegisterFlags(flags, &cfg)
	config.RegisterCLIFlags(flags, &cfg)
	versionFlag := flags.Bool("version", false, "Print version information and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		slog.Error("parse flags", slog.Any("err", err))
		os.Exit(1)
	}
	if *versionFlag {
		fmt.Println(buildinfo.Summary())
		os.Exit(0)
	}
	if err := config.ApplyFile(flags, &cfg); err != nil {
		slog.Error("load config file", slog.Any("err", err))
		os.Exit(1)
	}
	if err := config.Finalize(&cfg); err != nil {
		slog.Error("invalid configuration", slog.Any("err", err))
		os.Exit(1)
	}

	logLevel := slog.LevelWarn
	if cfg.Verbose {
		logLevel = slog.LevelInfo
	}
	// stdout carries the converted text, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	logger = logger.With("app", "chatmd")
	slog.SetDefault(logger)

	input := "-"
	if flags.NArg() > 1 {
		logger.Error("too many arguments", slog.Int("count", flags.NArg()))
		os.Exit(2)
	}
	if flags.NArg() == 1 {
		input = flags.Arg(0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, input, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		cancel()
		logger.Error("conversion failed", slog.Any("err", err))
		//nolint:gocritic // exitAfterDefer: cancel() explicitly called before os.Exit
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, input string, logger *slog.Logger) error {
	svc := converter.New(logger)
	opts := cfg.ParseOptions()

	if cfg.Watch {
		if input == "-" {
			return errors.New("--watch needs a file argument")
		}
		w, err := watch.New(input, svc, cfg.Dialect, opts, logger)
		if err != nil {
			return err
		}
		return w.Run(ctx, func(doc converter.Document) error {
			logger.Info("converted", slog.String("dialect", doc.Dialect), slog.Time("modified", doc.Modified))
			return writeOutput(cfg.Output, doc.Text)
		})
	}

	var (
		doc converter.Document
		err error
	)
	if input == "-" {
		content, rerr := io.ReadAll(os.Stdin)
		if rerr != nil {
			return fmt.Errorf("read stdin: %w", rerr)
		}
		doc, err = svc.Convert(ctx, content, cfg.Dialect, opts)
	} else {
		info, serr := os.Stat(input)
		if serr != nil {
			return fmt.Errorf("stat input: %w", serr)
		}
		content, rerr := os.ReadFile(input)
		if rerr != nil {
			return fmt.Errorf("read input: %w", rerr)
		}
		doc, err = svc.Render(ctx, input, info.ModTime(), content, cfg.Dialect, opts)
	}
	if err != nil {
		return err
	}

	if !doc.Metadata.IsZero() {
		logger.Info("front matter", slog.String("title", doc.Metadata.Title), slog.Any("tags", doc.Metadata.Tags))
	}
	return writeOutput(cfg.Output, doc.Text)
}

func writeOutput(path, text string) error {
	if path == "-" {
		_, err := io.WriteString(os.Stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil { //nolint:gosec // converted output is not sensitive
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
