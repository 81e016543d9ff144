// Package pipeline runs one purchase analytics report: load the product
// table, aggregate the order-product file against it, write the department
// report and optionally store it in SQL.
//
// Stages run strictly in order on one goroutine. The product table is fully
// loaded before the order file is opened. Each stage is timed and recorded
// through the metrics package.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"purchaseanalytics/internal/aggregate"
	"purchaseanalytics/internal/config"
	"purchaseanalytics/internal/datasource/file"
	"purchaseanalytics/internal/logger"
	"purchaseanalytics/internal/metrics"
	"purchaseanalytics/internal/parser/csv"
	"purchaseanalytics/internal/products"
	"purchaseanalytics/internal/report"
	"purchaseanalytics/internal/schema"
	"purchaseanalytics/internal/skiplog"
	"purchaseanalytics/internal/storage"
	"purchaseanalytics/internal/transformer"
)

// Step names used in logs and metrics.
const (
	StepLoadProducts = "load_products"
	StepAggregate    = "aggregate"
	StepWriteReport  = "write_report"
	StepSaveReport   = "save_report"
)

// Input names used in logs and metrics.
const (
	InputProducts      = "products"
	InputOrderProducts = "order_products"
)

// InputSummary describes one consumed input.
type InputSummary struct {
	Path   string
	Bytes  int64
	Counts transformer.Counts
}

// Summary is the outcome of a successful run.
type Summary struct {
	RunID string

	Products      InputSummary
	OrderProducts InputSummary

	// ProductIDs is the number of distinct product ids; Overwrites counts
	// duplicate ids replaced by a later row.
	ProductIDs int
	Overwrites int

	Departments int
	TotalOrders int64

	ReportPath string
	Digest     report.Digest

	// StoredRows is the number of rows written to storage; zero when
	// storage is disabled.
	StoredRows int64

	// Rejects counts skipped rows per source and kind; Rejected is their
	// total.
	Rejects  []skiplog.Count
	Rejected int
}

// Run executes the pipeline described by p. Paths are expected to have passed
// config.CheckPaths. Malformed rows are skipped and never fail the run;
// schema errors, zero-order departments and I/O errors do.
func Run(ctx context.Context, log *slog.Logger, p config.Pipeline) (sum Summary, err error) {
	if log == nil {
		log = logger.Discard()
	}
	sum.RunID = uuid.NewString()
	sum.ReportPath = p.Report.Path
	log = log.With("job", p.Job, "run_id", sum.RunID)

	prodSchema, orderSchema := p.Schemas()
	for _, s := range []schema.Schema{prodSchema, orderSchema} {
		if _, err := transformer.NewDecoder(s); err != nil {
			return sum, fmt.Errorf("schema %s: %w", s.Name, err)
		}
		log.Debug("schema", "name", s.Name, "columns", strings.Join(s.Names(), ","))
	}

	opts := csv.OptionsFrom(p.Parser.Options)
	checkHeader := p.Parser.Options.Bool("check_header", true)

	rejects := skiplog.NewCounter()
	if p.Rejects.Path != "" {
		rejects, err = skiplog.New(p.Rejects.Path)
		if err != nil {
			return sum, err
		}
	}
	defer func() {
		sum.Rejects = rejects.Summary()
		sum.Rejected = rejects.Total()
		if cerr := rejects.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	onReject := func(input string) func(transformer.Reject) {
		return func(r transformer.Reject) {
			log.Warn("skipping row",
				"source", r.Source,
				"line", r.Line,
				"kind", r.Kind,
				"reason", r.Reason)
			metrics.RecordRows(p.Job, input, "rejected_"+r.Kind, 1)
			rejects.Add(r)
		}
	}

	// Product table.
	prodSrc := file.NewLocal(p.Products.Path)
	sum.Products = describe(log, prodSrc, "loading product table")

	var lookup *products.Lookup
	err = step(p.Job, StepLoadProducts, func() error {
		var counts transformer.Counts
		var lerr error
		lookup, counts, lerr = products.Load(ctx, prodSrc, products.Config{
			Schema:   prodSchema,
			Options:  opts,
			OnReject: onReject(InputProducts),
			Log:      log,
		})
		sum.Products.Counts = counts
		return lerr
	})
	finishInput(log, p.Job, InputProducts, prodSrc.Name(), sum.Products.Counts, checkHeader)
	if err != nil {
		return sum, err
	}
	sum.ProductIDs = lookup.Len()
	sum.Overwrites = lookup.Overwrites()
	log.Info("product table loaded", "products", sum.ProductIDs, "overwrites", sum.Overwrites)

	// Order products.
	orderSrc := file.NewLocal(p.OrderProducts.Path)
	sum.OrderProducts = describe(log, orderSrc, "aggregating orders")

	var stats *aggregate.Stats
	err = step(p.Job, StepAggregate, func() error {
		var counts transformer.Counts
		var aerr error
		stats, counts, aerr = aggregate.Run(ctx, orderSrc, aggregate.Config{
			Schema:   orderSchema,
			Options:  opts,
			OnReject: onReject(InputOrderProducts),
		}, lookup)
		sum.OrderProducts.Counts = counts
		return aerr
	})
	finishInput(log, p.Job, InputOrderProducts, orderSrc.Name(), sum.OrderProducts.Counts, checkHeader)
	if err != nil {
		return sum, err
	}
	sum.Departments = stats.Len()
	sum.TotalOrders = stats.TotalOrders()

	// Report.
	log.Info("writing report", "path", p.Report.Path, "departments", sum.Departments)
	var lines []report.Line
	err = step(p.Job, StepWriteReport, func() error {
		var werr error
		if lines, werr = report.Build(stats); werr != nil {
			return werr
		}
		sum.Digest, werr = report.WriteFile(p.Report.Path, lines, report.Options{CRLF: p.Report.CRLF})
		return werr
	})
	if err != nil {
		return sum, err
	}
	metrics.RecordReportLines(p.Job, int64(len(lines)))

	// Optional SQL copy of the report.
	if p.Storage.Kind != "" {
		err = step(p.Job, StepSaveReport, func() error {
			var serr error
			sum.StoredRows, serr = save(ctx, p.Storage, sum.RunID, lines)
			return serr
		})
		if err != nil {
			return sum, err
		}
		log.Info("report stored",
			"kind", p.Storage.Kind, "table", p.Storage.Table, "rows", sum.StoredRows)
	}

	log.Info("done",
		"departments", sum.Departments,
		"orders", sum.TotalOrders,
		"rejected", rejects.Total(),
		"digest", sum.Digest.String())
	return sum, nil
}

// step runs fn and records its outcome and latency.
func step(job, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(job, name, err, time.Since(start))
	return err
}

// describe logs the start of an input stage with the file size.
func describe(log *slog.Logger, src *file.Local, msg string) InputSummary {
	in := InputSummary{Path: src.Path()}
	if n, err := src.Size(); err == nil {
		in.Bytes = n
		log.Info(msg, "path", src.Path(), "size", humanize.Bytes(uint64(n)))
	} else {
		log.Info(msg, "path", src.Path())
	}
	return in
}

// finishInput reports row counts and, when enabled, header drift.
func finishInput(log *slog.Logger, job, input, source string, c transformer.Counts, checkHeader bool) {
	metrics.RecordRows(job, input, "read", int64(c.Read))
	metrics.RecordRows(job, input, "accepted", int64(c.Accepted))
	metrics.RecordRows(job, input, "rejected", int64(c.Rejected))

	if checkHeader && len(c.HeaderMismatches) > 0 {
		log.Warn("header differs from expected columns",
			"source", source, "columns", strings.Join(c.HeaderMismatches, "; "))
	}
	log.Debug("input consumed",
		"source", source, "read", c.Read, "accepted", c.Accepted, "rejected", c.Rejected)
}

func save(ctx context.Context, s config.Storage, runID string, lines []report.Line) (int64, error) {
	repo, err := storage.New(ctx, storage.Config{
		Kind:    s.Kind,
		DSN:     s.DSN,
		Table:   s.Table,
		Columns: storage.ReportColumns,
	})
	if err != nil {
		return 0, fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()
	return storage.SaveReport(ctx, s.Kind, repo, s.Table, runID, lines)
}
