package aggregate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"mealtracker/internal/domain"
	"mealtracker/internal/num"
)

// ExportHeader is the first CSV record.
var ExportHeader = []string{"date", "name", "servings", "calories", "protein", "carbs", "fat"}

// ErrBadHeader is returned by ReadCSV when the first record does not match
// ExportHeader.
var ErrBadHeader = errors.New("export: unexpected csv header")

// ExportRow is one entry in the flat export projection. Macros are rounded
// to whole numbers.
type ExportRow struct {
	Date     string  `json:"date"`
	Name     string  `json:"name"`
	Servings float64 `json:"servings"`
	Calories int64   `json:"calories"`
	Protein  int64   `json:"protein"`
	Carbs    int64   `json:"carbs"`
	Fat      int64   `json:"fat"`
}

// ExportRows projects entries into rows sorted by date ascending. Entries on
// the same day keep their input order.
func ExportRows(entries []domain.Entry) []ExportRow {
	rows := make([]ExportRow, 0, len(entries))
	for _, e := range entries {
		m := e.Totals().Clean()
		rows = append(rows, ExportRow{
			Date:     e.Date,
			Name:     e.Name,
			Servings: domain.NormalizeServings(e.Servings),
			Calories: num.Round(m.Calories),
			Protein:  num.Round(m.Protein),
			Carbs:    num.Round(m.Carbs),
			Fat:      num.Round(m.Fat),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows
}

// WriteCSV writes the header followed by one record per row.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Date,
			r.Name,
			strconv.FormatFloat(r.Servings, 'f', -1, 64),
			strconv.FormatInt(r.Calories, 10),
			strconv.FormatInt(r.Protein, 10),
			strconv.FormatInt(r.Carbs, 10),
			strconv.FormatInt(r.Fat, 10),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses output of WriteCSV. Numeric cells that fail to parse read
// as zero, servings as 1.
func ReadCSV(r io.Reader) ([]ExportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(ExportHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return []ExportRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range header {
		if strings.TrimSpace(strings.ToLower(h)) != ExportHeader[i] {
			return nil, ErrBadHeader
		}
	}

	rows := []ExportRow{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rows = append(rows, ExportRow{
			Date:     rec[0],
			Name:     rec[1],
			Servings: domain.NormalizeServings(num.Coerce(rec[2])),
			Calories: num.Round(num.Coerce(rec[3])),
			Protein:  num.Round(num.Coerce(rec[4])),
			Carbs:    num.Round(num.Coerce(rec[5])),
			Fat:      num.Round(num.Coerce(rec[6])),
		})
	}
}
