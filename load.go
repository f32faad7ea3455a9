package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// loadSheet reads CSV data from a URL, a file, or stdin when src is "-".
// Excel workbooks (.xlsx) are converted to CSV from their first sheet.
func loadSheet(ctx context.Context, src string, stdin io.Reader) (string, error) {
	var bts []byte
	var err error
	switch {
	case src == "-":
		if bts, err = io.ReadAll(stdin); err != nil {
			return "", appError{err, "Unable to read stdin."}
		}
	case strings.HasPrefix(src, "https://") || strings.HasPrefix(src, "http://"):
		if bts, err = fetchSheet(ctx, src); err != nil {
			return "", err
		}
	default:
		if bts, err = os.ReadFile(strings.TrimPrefix(src, "file://")); err != nil {
			return "", appError{err, fmt.Sprintf("Could not read sheet %q.", src)}
		}
	}

	if isWorkbook(src, bts) {
		return workbookToCSV(bytes.NewReader(bts))
	}
	return string(bts), nil
}

func fetchSheet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, appError{err, "Invalid sheet URL."}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, appError{err, "Could not download sheet."}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, appError{
			newUserErrorf("unexpected status %s", resp.Status),
			"Could not download sheet.",
		}
	}
	bts, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appError{err, "Could not download sheet."}
	}
	return bts, nil
}

// zipMagic starts every xlsx file.
var zipMagic = []byte("PK\x03\x04")

func isWorkbook(src string, bts []byte) bool {
	return strings.HasSuffix(strings.ToLower(src), ".xlsx") || bytes.HasPrefix(bts, zipMagic)
}

// workbookToCSV converts the first sheet of an Excel workbook to CSV.
func workbookToCSV(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", appError{err, "Could not open the workbook."}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", appError{errors.New("no sheets"), "The workbook has no sheets."}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", appError{err, fmt.Sprintf("Could not read sheet %q of the workbook.", sheets[0])}
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.WriteAll(rows); err != nil {
		return "", appError{err, "Could not convert the workbook to CSV."}
	}
	return sb.String(), nil
}
