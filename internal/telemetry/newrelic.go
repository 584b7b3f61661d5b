package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	AppName    string
	LicenseKey string
}

// Telemetry wraps an optional New Relic application. With no license key it
// is a no-op: the agent's methods are nil-safe.
type Telemetry struct {
	app *newrelic.Application
}

func New(cfg Config) (*Telemetry, error) {
	if cfg.LicenseKey == "" {
		log.Debug("new relic license key not set, telemetry disabled")
		return &Telemetry{}, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		return nil, fmt.Errorf("creating new relic application: %w", err)
	}

	return &Telemetry{app: app}, nil
}

func (t *Telemetry) Enabled() bool {
	return t.app != nil
}

// HTTPClient returns a client whose requests are recorded as external
// segments of the transaction in the request context.
func (t *Telemetry) HTTPClient() *http.Client {
	return &http.Client{
		Transport: newrelic.NewRoundTripper(http.DefaultTransport),
	}
}

// Run executes fn inside a transaction named name and reports its error.
func (t *Telemetry) Run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	txn := t.app.StartTransaction(name)
	defer txn.End()

	err := fn(newrelic.NewContext(ctx, txn))
	if err != nil {
		txn.NoticeError(err)
	}

	return err
}

// Shutdown flushes pending data. Short-lived CLI processes must call it or
// their transactions are lost.
func (t *Telemetry) Shutdown(timeout time.Duration) {
	if t.app == nil {
		return
	}
	t.app.Shutdown(timeout)
}
