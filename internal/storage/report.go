package storage

import (
	"context"
	"fmt"
	"strconv"

	"purchaseanalytics/internal/ddl"
	"purchaseanalytics/internal/report"
)

// ReportColumns is the column order of the stored report.
var ReportColumns = []string{
	"run_id",
	"department_id",
	"number_of_orders",
	"number_of_first_orders",
	"percentage",
}

// ReportTable describes the report table for dialect d. (run_id,
// department_id) is the primary key, so a run is stored at most once.
func ReportTable(d ddl.Dialect, table string) ddl.TableDef {
	return ddl.TableDef{
		FQN: table,
		Columns: []ddl.ColumnDef{
			{Name: "run_id", SQLType: d.Types.Text, PrimaryKey: true},
			{Name: "department_id", SQLType: d.Types.Integer, PrimaryKey: true},
			{Name: "number_of_orders", SQLType: d.Types.Integer},
			{Name: "number_of_first_orders", SQLType: d.Types.Integer},
			{Name: "percentage", SQLType: d.Types.Float},
		},
	}
}

// ReportRows converts report lines into CopyFrom rows. The percentage is the
// same two-decimal value the CSV carries.
func ReportRows(runID string, lines []report.Line) ([][]any, error) {
	rows := make([][]any, 0, len(lines))
	for _, l := range lines {
		pct, err := strconv.ParseFloat(report.FormatPercentage(l.Percentage), 64)
		if err != nil {
			return nil, fmt.Errorf("department %d: %w", l.DepartmentID, err)
		}
		rows = append(rows, []any{runID, l.DepartmentID, l.Orders, l.FirstOrders, pct})
	}
	return rows, nil
}

// SaveReport creates the report table when missing and appends one row per
// report line tagged with runID.
func SaveReport(ctx context.Context, kind string, repo Repository, table, runID string, lines []report.Line) (int64, error) {
	d, err := DialectFor(kind)
	if err != nil {
		return 0, err
	}
	if err := EnsureTable(ctx, kind, repo, ReportTable(d, table)); err != nil {
		return 0, fmt.Errorf("save report: %w", err)
	}
	rows, err := ReportRows(runID, lines)
	if err != nil {
		return 0, fmt.Errorf("save report: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := repo.CopyFrom(ctx, ReportColumns, rows)
	if err != nil {
		return n, fmt.Errorf("save report: %w", err)
	}
	return n, nil
}
