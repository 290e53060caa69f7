package rowstore

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const sheetsLastColumn = "ZZ"

// SheetsBackend stores each table as a sheet of a Google spreadsheet
type SheetsBackend struct {
	svc           *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// NewSheetsBackend creates a spreadsheet backed row store using a service account file
func NewSheetsBackend(ctx context.Context, spreadsheetID, credentialsFile string) (*SheetsBackend, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is empty: %w", ErrNotConfigured)
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return &SheetsBackend{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetIDs:      make(map[string]int64),
	}, nil
}

// sheetID looks the numeric sheet id up by title, refreshing the cache on a miss
func (s *SheetsBackend) sheetID(ctx context.Context, table string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.sheetIDs[table]; ok {
		return id, true, nil
	}

	resp, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	for _, sh := range resp.Sheets {
		if sh.Properties == nil {
			continue
		}
		s.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
	}

	id, ok := s.sheetIDs[table]
	return id, ok, nil
}

func toValues(rows [][]string) [][]interface{} {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	return values
}

func fromValues(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = fmt.Sprint(cell)
		}
	}
	return rows
}

// EnsureTable adds the sheet and writes its header when missing
func (s *SheetsBackend) EnsureTable(ctx context.Context, table string, header []string) error {
	_, ok, err := s.sheetID(ctx, table)
	if err != nil {
		return err
	}

	if !ok {
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: table},
				},
			}},
		}
		if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", table, err)
		}
		return s.SetHeader(ctx, table, header)
	}

	existing, err := s.Header(ctx, table)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return s.SetHeader(ctx, table, header)
	}
	return nil
}

// Header returns the first row of the sheet
func (s *SheetsBackend) Header(ctx context.Context, table string) ([]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, fmt.Sprintf("%s!1:1", table)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get header: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return fromValues(resp.Values)[0], nil
}

// SetHeader overwrites the first row of the sheet
func (s *SheetsBackend) SetHeader(ctx context.Context, table string, header []string) error {
	vr := &sheets.ValueRange{Values: toValues([][]string{header})}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, fmt.Sprintf("%s!A1", table), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to set header: %w", err)
	}
	return nil
}

// Rows returns every row below the header
func (s *SheetsBackend) Rows(ctx context.Context, table string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, fmt.Sprintf("%s!A2:%s", table, sheetsLastColumn)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return fromValues(resp.Values), nil
}

// Append inserts rows after the last filled row
func (s *SheetsBackend) Append(ctx context.Context, table string, rows [][]string) error {
	vr := &sheets.ValueRange{Values: toValues(rows)}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, fmt.Sprintf("%s!A1", table), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append rows: %w", err)
	}
	return nil
}

// UpdateRow overwrites the row at index; sheet row 1 is the header
func (s *SheetsBackend) UpdateRow(ctx context.Context, table string, index int, row []string) error {
	vr := &sheets.ValueRange{Values: toValues([][]string{row})}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, fmt.Sprintf("%s!A%d", table, index+2), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update row: %w", err)
	}
	return nil
}

// DeleteRow removes the physical row at index
func (s *SheetsBackend) DeleteRow(ctx context.Context, table string, index int) error {
	id, ok, err := s.sheetID(ctx, table)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", table, ErrNoTable)
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    id,
					Dimension:  "ROWS",
					StartIndex: int64(index + 1),
					EndIndex:   int64(index + 2),
					// sheet id 0 is valid and must not be dropped as empty
					ForceSendFields: []string{"SheetId"},
				},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete row: %w", err)
	}
	return nil
}
