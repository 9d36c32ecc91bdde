package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"swapForge/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "positions.jsonl")
	sink := NewJsonlStorage(path)

	positions := []model.Position{
		{ID: "v1-0xpool", Version: model.VersionV1, Amount0: "100", Amount1: "500"},
		{ID: "v2-42", Version: model.VersionV2, Amount0: "1", Amount1: "2"},
	}
	if err := sink.PutPositions(positions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sink.PutVolumeSummary(model.VolumeSummary{FromBlock: 1, ToBlock: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want 3", len(lines))
	}

	var first model.Position
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal first line: %v", err)
	}
	if first.ID != "v1-0xpool" || first.Amount0 != "100" {
		t.Fatalf("first record mismatch: %+v", first)
	}
}

func TestJsonlStorageEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.jsonl")
	sink := NewJsonlStorage(path)

	if err := sink.PutPositions(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty batch must not create the file")
	}
}
