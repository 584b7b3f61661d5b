package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"course-catalog-go/internal/api"
	"course-catalog-go/internal/auth"
	"course-catalog-go/internal/catalog"
	"course-catalog-go/internal/notifications"
	"course-catalog-go/internal/session"
	"course-catalog-go/internal/storage"
	"course-catalog-go/internal/telemetry"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app holds everything a command needs, wired once per process.
type app struct {
	cfg *Config

	stdin  io.Reader
	lines  *bufio.Reader
	stdout io.Writer
	stderr io.Writer

	storage   storage.Client
	sessions  *session.Store
	client    api.Client
	auth      *auth.Flow
	catalog   *catalog.Catalog
	notifier  *notifications.Notifier
	telemetry *telemetry.Telemetry
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "loading .env: %v\n", err)
		return 1
	}

	global, name, rest := splitArgs(args)

	cfg, err := ReadConfig(global)
	if err != nil {
		if errors.Is(err, errHelp) {
			usage, usageErr := configUsage()
			if usageErr != nil {
				fmt.Fprintln(stderr, usageErr)
				return 1
			}
			printUsage(stdout)
			fmt.Fprintf(stdout, "\nGlobal flags:\n%s\n", usage)
			return 0
		}
		fmt.Fprintf(stderr, "reading config: %v\n", err)
		return 2
	}

	setupLogging(cfg.LogLevel, stderr)

	if name == "" || name == "help" {
		printUsage(stdout)
		return 0
	}

	cmd, ok := findCommand(name)
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		printUsage(stderr)
		return 2
	}

	a, err := newApp(cfg, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "starting catalog: %v\n", err)
		return 1
	}
	defer a.Close()

	err = a.telemetry.Run(ctx, "catalog "+cmd.name, func(ctx context.Context) error {
		return cmd.run(ctx, a, rest)
	})
	if err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "%v\n\nUsage: catalog %s\n", usageErr.err, cmd.usage)
			return 2
		}
		a.notifier.Error(err)
		return 1
	}

	return 0
}

func setupLogging(level string, out io.Writer) {
	log.SetOutput(out)

	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("unknown log level %q, using warn", level)
		parsed = log.WarnLevel
	}
	log.SetLevel(parsed)
}

func newApp(cfg *Config, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	tel, err := telemetry.New(telemetry.Config{
		AppName:    cfg.NewRelic.AppName,
		LicenseKey: cfg.NewRelic.LicenseKey,
	})
	if err != nil {
		return nil, err
	}

	store, err := storage.NewClient(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("opening local storage: %w", err)
	}

	sessions, err := session.NewStore(store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("loading session: %w", err)
	}

	client, err := api.NewClient(cfg.APIURL, sessions, api.WithHTTPClient(tel.HTTPClient()))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating api client: %w", err)
	}

	log.WithFields(log.Fields{
		"api_url":   cfg.APIURL,
		"storage":   cfg.StoragePath,
		"telemetry": tel.Enabled(),
	}).Debug("catalog configured")

	return &app{
		cfg:       cfg,
		stdin:     stdin,
		lines:     bufio.NewReader(stdin),
		stdout:    stdout,
		stderr:    stderr,
		storage:   store,
		sessions:  sessions,
		client:    client,
		auth:      auth.NewFlow(client, sessions),
		catalog:   catalog.New(client),
		notifier:  notifications.NewNotifier(stderr),
		telemetry: tel,
	}, nil
}

func (a *app) Close() {
	a.telemetry.Shutdown(5 * time.Second)
	a.storage.Close()
}
