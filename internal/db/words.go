package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxWordLength = 64

// LibraryModes are the modes that draw answers from the word library.
var LibraryModes = []string{"battle", "ojama"}

// FetchWords returns the library rows for mode in insertion order.
func FetchWords(ctx context.Context, conn *gorm.DB, mode string) ([]WordLibrary, error) {
	if conn == nil {
		return nil, nil
	}
	var rows []WordLibrary
	if err := conn.WithContext(ctx).Where("mode = ?", mode).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch %s words: %w", mode, err)
	}
	return rows, nil
}

// LoadWordLibrary reads a mode,tier,text CSV and inserts any rows that are
// not already present.
func LoadWordLibrary(ctx context.Context, conn *gorm.DB, path string) (inserted, skipped int, err error) {
	if conn == nil {
		return 0, 0, errors.New("db connection is nil")
	}
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	records, err := ReadWords(file)
	if err != nil {
		return 0, 0, err
	}
	for _, record := range records {
		result := conn.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
		switch {
		case IsUniqueViolation(result.Error):
			skipped++
		case result.Error != nil:
			return inserted, skipped, fmt.Errorf("insert %q: %w", record.Text, result.Error)
		case result.RowsAffected == 0:
			skipped++
		default:
			inserted++
		}
	}
	return inserted, skipped, nil
}

// ReadWords parses a word CSV with a header row. Rows with an unknown mode,
// an empty or oversized word, or a bad tier are dropped.
func ReadWords(r io.Reader) ([]WordLibrary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read word csv: %w", err)
	}

	var records []WordLibrary
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		mode := strings.ToLower(strings.TrimSpace(row[0]))
		if !isLibraryMode(mode) {
			continue
		}
		tier := 1
		if raw := strings.TrimSpace(row[1]); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 3 {
				continue
			}
			tier = parsed
		}
		text := strings.TrimSpace(row[2])
		if text == "" || utf8.RuneCountInString(text) > maxWordLength {
			continue
		}
		records = append(records, WordLibrary{Mode: mode, Tier: tier, Text: text})
	}
	return records, nil
}

func isLibraryMode(mode string) bool {
	for _, candidate := range LibraryModes {
		if candidate == mode {
			return true
		}
	}
	return false
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
