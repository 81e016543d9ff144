// Command purchase_analytics computes, per department, how many products were
// ordered and how many of those orders were first orders.
//
//	purchase_analytics [flags] <order_products.csv> <products.csv> <report.csv>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"purchaseanalytics/internal/config"
	"purchaseanalytics/internal/logger"
	"purchaseanalytics/internal/metrics"
	"purchaseanalytics/internal/metrics/datadog"
	"purchaseanalytics/internal/metrics/prompush"
	"purchaseanalytics/internal/pipeline"
	"purchaseanalytics/internal/storage"

	// register all backends with the storage factory.
	_ "purchaseanalytics/internal/storage/all"
)

const usage = "usage: purchase_analytics [flags] <order_products.csv> <products.csv> <report.csv>"

// errUsage marks a wrong invocation.
var errUsage = errors.New(usage)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath     string
	verbose        bool
	noColor        bool
	validate       bool
	rejects        string
	crlf           bool
	metricsBackend string
	pushgatewayURL string
	statsdAddr     string
	storageKind    string
	storageDSN     string
	storageTable   string
}

func parseFlags(args []string, stderr io.Writer) (options, []string, error) {
	var o options
	fs := flag.NewFlagSet("purchase_analytics", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&o.configPath, "config", "", "optional pipeline config file (JSON or YAML)")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose (debug) logging")
	fs.BoolVar(&o.noColor, "no-color", false, "disable colored log output")
	fs.BoolVar(&o.validate, "validate", false, "validate the configuration and exit")
	fs.StringVar(&o.rejects, "rejects", "", "write skipped rows to this CSV file")
	fs.BoolVar(&o.crlf, "crlf", false, "terminate report lines with CRLF")
	fs.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides config)")
	fs.StringVar(&o.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides config)")
	fs.StringVar(&o.statsdAddr, "statsd-addr", "", "DogStatsD address (overrides config)")
	fs.StringVar(&o.storageKind, "storage-kind", "", "also store the report in SQL: "+strings.Join(storage.ListKinds(), ", "))
	fs.StringVar(&o.storageDSN, "storage-dsn", "", "storage connection string")
	fs.StringVar(&o.storageTable, "storage-table", "", "storage table name")

	if err := fs.Parse(args); err != nil {
		return o, nil, err
	}
	return o, fs.Args(), nil
}

// apply overlays positional arguments and explicitly set flags on p.
func (o options) apply(p *config.Pipeline, positional []string) {
	p.OrderProducts.Path = positional[0]
	p.Products.Path = positional[1]
	p.Report.Path = positional[2]

	if o.rejects != "" {
		p.Rejects.Path = o.rejects
	}
	if o.crlf {
		p.Report.CRLF = true
	}
	if o.metricsBackend != "" {
		p.Metrics.Backend = o.metricsBackend
	}
	if o.pushgatewayURL != "" {
		p.Metrics.PushgatewayURL = o.pushgatewayURL
	}
	if o.statsdAddr != "" {
		p.Metrics.StatsdAddr = o.statsdAddr
	}
	if o.storageKind != "" {
		p.Storage.Kind = o.storageKind
	}
	if o.storageDSN != "" {
		p.Storage.DSN = o.storageDSN
	}
	if o.storageTable != "" {
		p.Storage.Table = o.storageTable
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	o, positional, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if len(positional) != 3 {
		return fmt.Errorf("%w: got %d arguments", errUsage, len(positional))
	}

	log := logger.NewWriter(stderr, o.verbose, o.noColor)

	p, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.apply(&p, positional)

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			log.Error("invalid configuration", "path", iss.Path, "message", iss.Message)
		} else {
			log.Warn("configuration", "path", iss.Path, "message", iss.Message)
		}
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration is invalid")
	}
	if err := config.CheckPaths(p); err != nil {
		return err
	}
	if o.validate {
		log.Info("configuration is valid")
		return nil
	}

	flush := setupMetrics(log, p)
	defer flush()

	start := time.Now()
	sum, err := pipeline.Run(ctx, log, p)
	if err != nil {
		return err
	}
	for _, c := range sum.Rejects {
		log.Info("rejected rows", "key", c.Key, "count", c.N)
	}
	if sum.Rejected > 0 && p.Rejects.Path == "" {
		log.Info("skipped rows not saved; pass --rejects to keep them", "rejected", sum.Rejected)
	}
	log.Debug("completed", "elapsed", time.Since(start).Truncate(time.Millisecond))
	return nil
}

// setupMetrics installs the configured metrics backend and returns the flush
// to run at exit. A backend that fails to initialize leaves metrics disabled.
func setupMetrics(log *slog.Logger, p config.Pipeline) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch p.Metrics.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(p.Job, p.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:      p.Metrics.StatsdAddr,
			Namespace: p.Metrics.Namespace,
			Job:       p.Job,
		})
	case "", "none":
		log.Debug("metrics disabled")
		return func() {}
	default:
		log.Warn("unknown metrics backend; metrics disabled", "backend", p.Metrics.Backend)
		return func() {}
	}
	if err != nil {
		log.Warn("metrics backend unavailable; using nop", "backend", p.Metrics.Backend, "error", err)
		return func() {}
	}

	log.Debug("metrics enabled", "backend", p.Metrics.Backend)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", "error", err)
		}
		metrics.Reset()
	}
}
