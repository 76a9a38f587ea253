package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateProjectReport(ctx context.Context, data ProjectReportData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Project Report", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New(data.OrgName, props.Text{Style: fontstyle.Bold}),
			text.New(fmt.Sprintf("%s (%s)", data.ProjectName, data.ProjectKey), props.Text{Top: 5}),
			text.New("Generated: "+data.GeneratedAt, props.Text{Top: 10, Size: 9}),
		),
		col.New(6),
	)

	m.AddRow(18,
		col.New(4).Add(
			text.New("Issues", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New(fmt.Sprintf("%d", data.TotalIssues), props.Text{Top: 5, Size: 14}),
		),
		col.New(4).Add(
			text.New("Minutes logged", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New(fmt.Sprintf("%d", data.TotalMinutes), props.Text{Top: 5, Size: 14}),
		),
		col.New(4).Add(
			text.New("Active sprints", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New(fmt.Sprintf("%d", data.ActiveSprints), props.Text{Top: 5, Size: 14}),
		),
	)

	// Column breakdown table
	m.AddRow(10,
		text.NewCol(6, "Column", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Slug", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Issues", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, column := range data.Columns {
		m.AddRow(8,
			text.NewCol(6, column.Name, props.Text{Size: 9}),
			text.NewCol(3, column.Slug, props.Text{Size: 9}),
			text.NewCol(3, fmt.Sprintf("%d", column.Issues), props.Text{Size: 9, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
