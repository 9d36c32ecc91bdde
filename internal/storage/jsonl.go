package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"swapForge/internal/model"
)

// JsonlStorage appends engine output records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutPositions appends a batch of position records as JSON lines.
func (s *JsonlStorage) PutPositions(positions []model.Position) error {
	if len(positions) == 0 {
		return nil
	}
	records := make([]interface{}, 0, len(positions))
	for _, position := range positions {
		records = append(records, position)
	}
	return s.appendLines(records)
}

// PutProfitAnalysis appends one profit analysis as a JSON line.
func (s *JsonlStorage) PutProfitAnalysis(analysis model.ProfitAnalysis) error {
	return s.appendLines([]interface{}{analysis})
}

// PutVolumeSummary appends one volume summary as a JSON line.
func (s *JsonlStorage) PutVolumeSummary(summary model.VolumeSummary) error {
	return s.appendLines([]interface{}{summary})
}

func (s *JsonlStorage) appendLines(records []interface{}) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
