package abtest

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest/layout"
	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
	"github.com/ukaji3/abtest-summary-go/pkg/abtest/telemetry"
	"github.com/ukaji3/abtest-summary-go/pkg/abtest/transform"
)

// TitleSuffix is appended to the experiment name to form the sheet title.
const TitleSuffix = "_summary"

// Render steps, as reported by RenderError.
const (
	StepWritePreamble = "write_preamble"
	StepWriteTable    = "write_table"
	StepApplyFormat   = "apply_format_plan"
)

// SheetService creates, fills and formats sheets in a spreadsheet.
type SheetService interface {
	CreateSheet(ctx context.Context, spreadsheetID, title string, rows, cols int) (models.SheetTarget, error)
	WriteValues(ctx context.Context, target models.SheetTarget, anchor string, rows [][]any) error
	// ApplyFormatPlan applies the whole plan as one batch, in order.
	ApplyFormatPlan(ctx context.Context, target models.SheetTarget, plan models.Plan) error
}

// Prepared is a table ready to be written: its layout, values and plan.
type Prepared struct {
	Layout       layout.Layout
	Table        models.TransformedTable
	Alpha        float64
	AnalysisType string
	Plan         models.Plan
}

// SheetTitle returns the title of an experiment's summary sheet.
func SheetTitle(experiment string) string {
	return experiment + TitleSuffix
}

// Prepare transforms table and computes its formatting plan without any
// service call.
func Prepare(table models.ResultTable, opts Options) (*Prepared, error) {
	l, err := layout.Resolve(opts.Layout)
	if err != nil {
		return nil, &ConfigurationError{Field: "layout", Row: -1, Err: err}
	}
	l.Filter = opts.ShouldIncludeFilter(l.Filter)

	out, alpha, analysisType, err := transform.Transform(table, opts.VariantMapping, l.Schema)
	if err != nil {
		return nil, err
	}

	plan := layout.NewPlanner(l, opts.palette()).Plan(out, alpha)
	return &Prepared{
		Layout:       l,
		Table:        out,
		Alpha:        alpha,
		AnalysisType: analysisType,
		Plan:         plan,
	}, nil
}

// Render writes the summary sheet of experiment into spreadsheetID: it
// creates the sheet, writes the preamble (if any) and the table, then
// applies the formatting plan in one call. Input errors are returned before
// any service call; no call follows a failed sheet creation.
func Render(ctx context.Context, svc SheetService, spreadsheetID, experiment string, table models.ResultTable, opts Options) (models.SheetTarget, error) {
	title := SheetTitle(experiment)
	ctx, span := telemetry.Tracer().Start(ctx, "abtest.Render", trace.WithAttributes(
		attribute.String("sheet.title", title),
		attribute.String("layout", string(opts.Layout)),
	))
	defer span.End()
	logger := zerolog.Ctx(ctx)

	p, err := Prepare(table, opts)
	if err != nil {
		return models.SheetTarget{}, fail(span, err)
	}
	span.SetAttributes(
		attribute.Int("rows", p.Table.Len()),
		attribute.Int("directives", len(p.Plan.Directives)),
	)
	logger.Debug().
		Str("title", title).
		Int("rows", p.Table.Len()).
		Int("directives", len(p.Plan.Directives)).
		Float64("alpha", p.Alpha).
		Msg("plan computed")

	var target models.SheetTarget
	err = step(ctx, "create_sheet", func(ctx context.Context) error {
		var err error
		target, err = svc.CreateSheet(ctx, spreadsheetID, title, p.Plan.Rows, p.Plan.Columns)
		return err
	})
	if err != nil {
		return models.SheetTarget{}, fail(span, &SheetCreationError{Title: title, Err: err})
	}

	if values := p.Layout.PreambleValues(p.AnalysisType, p.Alpha); values != nil {
		err := step(ctx, StepWritePreamble, func(ctx context.Context) error {
			return svc.WriteValues(ctx, target, "A1", values)
		})
		if err != nil {
			return target, fail(span, NewRenderError(title, StepWritePreamble, err))
		}
	}

	err = step(ctx, StepWriteTable, func(ctx context.Context) error {
		return svc.WriteValues(ctx, target, p.Layout.Anchor(), p.Table.Values())
	})
	if err != nil {
		return target, fail(span, NewRenderError(title, StepWriteTable, err))
	}

	err = step(ctx, StepApplyFormat, func(ctx context.Context) error {
		return svc.ApplyFormatPlan(ctx, target, p.Plan)
	})
	if err != nil {
		return target, fail(span, NewRenderError(title, StepApplyFormat, err))
	}

	logger.Info().Str("title", title).Int("rows", p.Table.Len()).Msg("summary rendered")
	return target, nil
}

// step runs fn inside a child span.
func step(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := telemetry.Tracer().Start(ctx, name)
	defer span.End()
	if err := fn(ctx); err != nil {
		return fail(span, err)
	}
	return nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
