package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"ytbatch/internal/services"
)

// Header is the fixed CSV column order. It never changes across versions of a
// run; Read rejects anything else.
var Header = []string{
	"index",
	"query",
	"status",
	"result_url",
	"result_title",
	"result_duration",
	"result_uploader",
	"output_path",
}

// utf8BOM is written at the start of every ledger so spreadsheet tools detect
// the encoding, and tolerated on read.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Write serializes the full row sequence to path. The file is written to a
// temp sibling and renamed so readers never observe a partial ledger.
func Write(path string, rows []Row) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	// CreateTemp opens 0600 and the rename keeps it; the ledger is meant to
	// open in external tools, so widen it like any other written artifact.
	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return fmt.Errorf("set ledger permissions: %w", err)
	}

	if _, err := tmp.Write(utf8BOM); err != nil {
		cleanup()
		return fmt.Errorf("write ledger bom: %w", err)
	}

	writer := csv.NewWriter(tmp)
	if err := writer.Write(Header); err != nil {
		cleanup()
		return fmt.Errorf("write ledger header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Index),
			row.Query,
			string(row.Status),
			row.ResultURL,
			row.ResultTitle,
			row.ResultDuration,
			row.ResultUploader,
			row.OutputPath,
		}
		if err := writer.Write(record); err != nil {
			cleanup()
			return fmt.Errorf("write ledger row %d: %w", row.Index, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		cleanup()
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// Read parses a ledger file, validating the header against the expected schema
// and the indices against file order. Rows come back in file order.
func Read(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrInput, "ledger", "read", fmt.Sprintf("missing ledger file %s", path), err)
		}
		return nil, services.Wrap(services.ErrInput, "ledger", "read", "unreadable ledger file", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = len(Header)

	header, err := reader.Read()
	if err != nil {
		return nil, services.Wrap(services.ErrSchema, "ledger", "read header", "ledger is empty or not CSV", err)
	}
	for i, column := range Header {
		if header[i] != column {
			return nil, services.Wrap(services.ErrSchema, "ledger", "read header",
				fmt.Sprintf("column %d is %q, expected %q", i, header[i], column), nil)
		}
	}

	var rows []Row
	for position := 0; ; position++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				return nil, services.Wrap(services.ErrSchema, "ledger", "read row", "wrong column count", err)
			}
			return nil, services.Wrap(services.ErrCorruption, "ledger", "read row", "malformed CSV record", err)
		}

		row, err := decodeRecord(position, record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRecord(position int, record []string) (Row, error) {
	index, err := strconv.Atoi(record[0])
	if err != nil {
		return Row{}, services.Wrap(services.ErrCorruption, "ledger", "decode row",
			fmt.Sprintf("non-numeric index %q", record[0]), err)
	}
	if index != position {
		return Row{}, services.Wrap(services.ErrCorruption, "ledger", "decode row",
			fmt.Sprintf("index %d at file position %d (gap or duplicate)", index, position), nil)
	}
	status, ok := ParseStatus(record[2])
	if !ok {
		return Row{}, services.Wrap(services.ErrCorruption, "ledger", "decode row",
			fmt.Sprintf("unknown status %q at index %d", record[2], index), nil)
	}
	row := Row{
		Index:          index,
		Query:          record[1],
		Status:         status,
		ResultURL:      record[3],
		ResultTitle:    record[4],
		ResultDuration: record[5],
		ResultUploader: record[6],
		OutputPath:     record[7],
	}
	if row.Status != StatusPending && row.Status != StatusResolutionFailed && row.ResultURL == "" {
		return Row{}, services.Wrap(services.ErrCorruption, "ledger", "decode row",
			fmt.Sprintf("row %d has status %s but no result_url", index, row.Status), nil)
	}
	return row, nil
}

// UpdateRow rewrites a single row in place, preserving all other rows. The
// ledger is one row per query, so a full read-modify-write is cheap and avoids
// partial-file corruption.
func UpdateRow(path string, row Row) error {
	rows, err := Read(path)
	if err != nil {
		return err
	}
	if row.Index < 0 || row.Index >= len(rows) {
		return services.Wrap(services.ErrCorruption, "ledger", "update row",
			fmt.Sprintf("index %d outside ledger of %d rows", row.Index, len(rows)), nil)
	}
	rows[row.Index] = row
	return Write(path, rows)
}
