package gsheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
)

// valueInputOption makes the API parse written values as if typed by a user.
const valueInputOption = "USER_ENTERED"

// DefaultWriteLimit paces write calls below the per-user Sheets write quota.
var DefaultWriteLimit = rate.Every(time.Second)

// Service creates and formats sheets in existing spreadsheets. It makes one
// call per operation and never retries.
type Service struct {
	api     *sheets.Service
	limiter *rate.Limiter
}

// NewService wraps api. A nil limiter uses DefaultWriteLimit with a burst of 3.
func NewService(api *sheets.Service, limiter *rate.Limiter) *Service {
	if limiter == nil {
		limiter = rate.NewLimiter(DefaultWriteLimit, 3)
	}
	return &Service{api: api, limiter: limiter}
}

// Connect builds a Sheets API client. credentialsFile may be empty to use
// application default credentials.
func Connect(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*sheets.Service, error) {
	all := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		all = append(all, option.WithCredentialsFile(credentialsFile))
	}
	all = append(all, opts...)
	api, err := sheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return api, nil
}

// CreateSheet adds a sheet named title with a rows x cols grid.
func (s *Service) CreateSheet(ctx context.Context, spreadsheetID, title string, rows, cols int) (models.SheetTarget, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return models.SheetTarget{}, err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{AddSheetRequest(title, rows, cols)},
	}
	resp, err := s.api.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return models.SheetTarget{}, err
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return models.SheetTarget{}, errors.New("addSheet reply is missing sheet properties")
	}

	props := resp.Replies[0].AddSheet.Properties
	zerolog.Ctx(ctx).Info().
		Str("spreadsheet", spreadsheetID).
		Str("title", props.Title).
		Int64("sheet_id", props.SheetId).
		Msg("sheet created")
	return models.SheetTarget{SpreadsheetID: spreadsheetID, SheetID: props.SheetId, Title: title}, nil
}

// WriteValues writes rows starting at anchor, an A1 cell reference.
func (s *Service) WriteValues(ctx context.Context, target models.SheetTarget, anchor string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	rng := A1Range(target.Title, anchor)
	values := &sheets.ValueRange{Range: rng, Values: cellValues(rows)}
	_, err := s.api.Spreadsheets.Values.Update(target.SpreadsheetID, rng, values).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Str("range", rng).Int("rows", len(rows)).Msg("values written")
	return nil
}

// ApplyFormatPlan sends the plan as a single batchUpdate.
func (s *Service) ApplyFormatPlan(ctx context.Context, target models.SheetTarget, plan models.Plan) error {
	req, err := BatchUpdate(plan, target.SheetID)
	if err != nil {
		return err
	}
	if len(req.Requests) == 0 {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := s.api.Spreadsheets.BatchUpdate(target.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Int("requests", len(req.Requests)).Str("title", target.Title).Msg("format plan applied")
	return nil
}

// A1Range qualifies anchor with a quoted sheet title, e.g. 'exp_summary'!A5.
func A1Range(title, anchor string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!" + anchor
}

func cellValues(rows [][]any) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		vals := make([]interface{}, len(row))
		for j, v := range row {
			if v == nil {
				v = ""
			}
			vals[j] = v
		}
		out[i] = vals
	}
	return out
}
