package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"ytbatch/internal/services"
)

func sampleRows() []Row {
	return []Row{
		{
			Index:          0,
			Query:          `song "a", remastered`,
			Status:         StatusResolved,
			ResultURL:      "https://www.youtube.com/watch?v=abc123def45",
			ResultTitle:    "Song A (Official\nVideo)",
			ResultDuration: "3:41",
			ResultUploader: "Label, Inc.",
		},
		{
			Index:  1,
			Query:  "song b",
			Status: StatusPending,
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	rows := sampleRows()

	if err := Write(path, rows); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, rows)
	}
}

func TestWriteEmitsBOMAndHeaderFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	if err := Write(path, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if data[0] != 0xEF || data[1] != 0xBB || data[2] != 0xBF {
		t.Fatalf("expected UTF-8 BOM, got % x", data[:3])
	}
	firstLine := strings.SplitN(string(data[3:]), "\n", 2)[0]
	if strings.TrimRight(firstLine, "\r") != strings.Join(Header, ",") {
		t.Fatalf("unexpected header line: %q", firstLine)
	}
}

func TestWriteIsWorldReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	if err := Write(path, sampleRows()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Fatalf("expected mode 0644, got %o", perm)
	}
}

func TestReadToleratesMissingBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := strings.Join(Header, ",") + "\n0,song a,pending,,,,,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	rows, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 1 || rows[0].Query != "song a" {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestReadRejectsMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	header := strings.Join(Header[:len(Header)-1], ",") // drop output_path
	if err := os.WriteFile(path, []byte(header+"\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	_, err := Read(path)
	if !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestReadRejectsReorderedColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	header := "query,index,status,result_url,result_title,result_duration,result_uploader,output_path"
	if err := os.WriteFile(path, []byte(header+"\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	_, err := Read(path)
	if !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestReadRejectsIndexGap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := strings.Join(Header, ",") + "\n0,song a,pending,,,,,\n2,song b,pending,,,,,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	_, err := Read(path)
	if !errors.Is(err, services.ErrCorruption) {
		t.Fatalf("expected corruption error, got %v", err)
	}
}

func TestReadRejectsResolvedRowWithoutURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := strings.Join(Header, ",") + "\n0,song a,resolved,,,,,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	_, err := Read(path)
	if !errors.Is(err, services.ErrCorruption) {
		t.Fatalf("expected corruption error, got %v", err)
	}
}

func TestReadMissingFileIsInputError(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.csv"))
	if !errors.Is(err, services.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestUpdateRowPreservesOthers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	rows := sampleRows()
	if err := Write(path, rows); err != nil {
		t.Fatalf("Write: %v", err)
	}

	updated := rows[1]
	updated.Status = StatusResolved
	updated.ResultURL = "https://www.youtube.com/watch?v=zzz999yyy88"
	if err := UpdateRow(path, updated); err != nil {
		t.Fatalf("UpdateRow: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(got[0], rows[0]) {
		t.Fatalf("row 0 changed: %#v", got[0])
	}
	if got[1].Status != StatusResolved || got[1].ResultURL != updated.ResultURL {
		t.Fatalf("row 1 not updated: %#v", got[1])
	}
}

func TestUpdateRowRejectsOutOfRangeIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	if err := Write(path, sampleRows()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	err := UpdateRow(path, Row{Index: 7, Status: StatusPending})
	if !errors.Is(err, services.ErrCorruption) {
		t.Fatalf("expected corruption error, got %v", err)
	}
}
