package pdf

import (
	"context"
	"io"
)

// Provider renders report documents.
type Provider interface {
	GenerateProjectReport(ctx context.Context, data ProjectReportData) (io.Reader, error)
}

// ProjectReportData is everything the project summary PDF needs.
type ProjectReportData struct {
	OrgName     string
	ProjectName string
	ProjectKey  string
	GeneratedAt string

	TotalIssues   int
	TotalMinutes  int64
	ActiveSprints int

	Columns []ReportColumn
}

// ReportColumn is one workflow column with its issue count.
type ReportColumn struct {
	Name   string
	Slug   string
	Issues int
}
