package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/campus-ops/reflow-api/internal/models"
)

// LoadPriorityTable reads a course priority table from CSV data with a
// header row of course_code, course_name, tier. Only code and tier are
// kept. Rows with a blank course code are skipped.
func LoadPriorityTable(r io.Reader) (models.PriorityTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return models.PriorityTable{}, nil
		}
		return nil, fmt.Errorf("read priority table header: %w", err)
	}
	codeIdx, tierIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.ToLower(col)) {
		case "course_code", "codigo_curso":
			codeIdx = i
		case "tier":
			tierIdx = i
		}
	}
	if codeIdx < 0 || tierIdx < 0 {
		return nil, fmt.Errorf("priority table needs course_code and tier columns, got %v", header)
	}

	table := models.PriorityTable{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read priority table line %d: %w", line, err)
		}
		if codeIdx >= len(record) || tierIdx >= len(record) {
			return nil, fmt.Errorf("priority table line %d is short", line)
		}
		code := strings.TrimSpace(record[codeIdx])
		if code == "" {
			continue
		}
		tier, err := strconv.Atoi(strings.TrimSpace(record[tierIdx]))
		if err != nil {
			return nil, fmt.Errorf("priority table line %d: bad tier %q", line, record[tierIdx])
		}
		if tier < 1 {
			return nil, fmt.Errorf("priority table line %d: tier must be >= 1", line)
		}
		table[code] = tier
	}
	return table, nil
}

// LoadPriorityTableFile loads the table from a CSV path. A missing or empty
// path yields an empty table, so every course falls back to the default
// tier.
func LoadPriorityTableFile(path string, logger *zap.Logger) (models.PriorityTable, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return models.PriorityTable{}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("priority table not found, using defaults", zap.String("path", path))
			return models.PriorityTable{}, nil
		}
		return nil, fmt.Errorf("open priority table %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck

	table, err := LoadPriorityTable(file)
	if err != nil {
		return nil, fmt.Errorf("priority table %s: %w", path, err)
	}
	logger.Info("priority table loaded", zap.String("path", path), zap.Int("courses", len(table)))
	return table, nil
}
