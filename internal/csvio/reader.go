// Package csvio reads group lists from CSV files and writes enriched rows
// back out. Input files come from many sources, so the reader tolerates
// different separators and header spellings; the writer emits one fixed
// schema.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/blockedby/groupmeta/internal/enricher"
	"github.com/blockedby/groupmeta/internal/telegram"
)

// Header aliases seen across exported group lists. Matching is
// case-insensitive after trimming whitespace and BOM.
var (
	idAliases       = []string{"id", "chat_id", "group_id", "channel_id"}
	usernameAliases = []string{"username", "user_name", "link", "url", "handle"}
	titleAliases    = []string{"title", "name", "chat_title", "group_name"}
	dateAliases     = []string{"date", "created_at", "added_at"}
)

type columnMap struct {
	id       int
	username int
	title    int
	date     int
}

// ReadGroups parses an input CSV into group records, preserving row order.
// The first row must be a header naming at least an id or username column.
func ReadGroups(r io.Reader) ([]enricher.GroupRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = detectSeparator(string(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []enricher.GroupRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(records)+2, err)
		}

		rec := enricher.GroupRecord{
			Username: field(row, cols.username),
			Title:    field(row, cols.title),
			Date:     field(row, cols.date),
		}
		if raw := field(row, cols.id); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err == nil {
				rec.ID = id
			}
			// unparseable ids fall back to the username column
		}
		records = append(records, rec)
	}

	return records, nil
}

// ReadGroupsFile opens and parses the file at path.
func ReadGroupsFile(path string) ([]enricher.GroupRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGroups(f)
}

// ReadEnriched parses a previous run's output file, used for resume and
// snapshot diffing. Unknown columns are ignored.
func ReadEnriched(r io.Reader) ([]enricher.EnrichedRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[normalizeHeader(name)] = i
	}

	col := func(name string) int {
		if i, ok := pos[name]; ok {
			return i
		}
		return -1
	}

	var records []enricher.EnrichedRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(records)+2, err)
		}

		rec := enricher.EnrichedRecord{
			GroupRecord: enricher.GroupRecord{
				Username: field(row, col("username")),
				Title:    field(row, col("title")),
				Date:     field(row, col("date")),
			},
			ActualTitle:    field(row, col("actual_title")),
			ActualUsername: field(row, col("actual_username")),
			ChatType:       telegram.ChatType(field(row, col("chat_type"))),
			AccessStatus:   enricher.AccessStatus(field(row, col("access_status"))),
			ErrorMessage:   field(row, col("error_message")),
		}
		rec.ID, _ = strconv.ParseInt(field(row, col("id")), 10, 64)
		rec.MembersCount, _ = strconv.Atoi(field(row, col("members_count")))
		rec.OnlineCount, _ = strconv.Atoi(field(row, col("online_count")))
		rec.SlowModeDelay, _ = strconv.Atoi(field(row, col("slow_mode_delay")))
		records = append(records, rec)
	}

	return records, nil
}

// ReadEnrichedFile parses the output file at path. A missing file is not an
// error; it simply means there is nothing to resume from.
func ReadEnrichedFile(path string) ([]enricher.EnrichedRecord, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadEnriched(f)
}

// detectSeparator picks the delimiter by counting candidates in the header
// line. Comma wins ties.
func detectSeparator(data string) rune {
	line := data
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	best := ','
	bestCount := strings.Count(line, ",")
	for _, sep := range []rune{';', '\t'} {
		if n := strings.Count(line, string(sep)); n > bestCount {
			best = sep
			bestCount = n
		}
	}
	return best
}

func mapColumns(header []string) (columnMap, error) {
	cols := columnMap{id: -1, username: -1, title: -1, date: -1}
	for i, name := range header {
		switch n := normalizeHeader(name); {
		case cols.id < 0 && contains(idAliases, n):
			cols.id = i
		case cols.username < 0 && contains(usernameAliases, n):
			cols.username = i
		case cols.title < 0 && contains(titleAliases, n):
			cols.title = i
		case cols.date < 0 && contains(dateAliases, n):
			cols.date = i
		}
	}

	if cols.id < 0 && cols.username < 0 {
		return cols, fmt.Errorf("header has neither an id nor a username column: %v", header)
	}
	return cols, nil
}

func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\uFEFF")
	return strings.ToLower(strings.TrimSpace(name))
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
