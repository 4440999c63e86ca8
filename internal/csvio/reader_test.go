package csvio

import (
	"strings"
	"testing"

	"github.com/blockedby/groupmeta/internal/enricher"
)

func TestReadGroups_CommaSeparated(t *testing.T) {
	input := "id,username,title,date\n123,golang,Go Nuts,2023-01-15\n,@rustlang,Rust,2023-02-01\n"

	records, err := ReadGroups(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if records[0].ID != 123 || records[0].Username != "golang" || records[0].Title != "Go Nuts" || records[0].Date != "2023-01-15" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].ID != 0 || records[1].Username != "@rustlang" {
		t.Errorf("unexpected second record: %+v", records[1])
	}
}

func TestReadGroups_SemicolonSeparated(t *testing.T) {
	input := "chat_id;link;name\n55;t.me/devs;Developers\n"

	records, err := ReadGroups(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ID != 55 || records[0].Username != "t.me/devs" || records[0].Title != "Developers" {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestReadGroups_TabSeparated(t *testing.T) {
	input := "username\ttitle\nalpha\tAlpha Group\n"

	records, err := ReadGroups(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Username != "alpha" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestReadGroups_HeaderAliases(t *testing.T) {
	input := "Group_ID,Handle,Chat_Title,Created_At\n7,seven,Seven,2020-01-01\n"

	records, err := ReadGroups(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := records[0]
	if rec.ID != 7 || rec.Username != "seven" || rec.Title != "Seven" || rec.Date != "2020-01-01" {
		t.Errorf("aliases not mapped: %+v", rec)
	}
}

func TestReadGroups_BOMHeader(t *testing.T) {
	input := "\uFEFFid,username\n9,bom\n"

	records, err := ReadGroups(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records[0].ID != 9 {
		t.Errorf("BOM broke the id column: %+v", records[0])
	}
}

func TestReadGroups_NoIdentifierColumn(t *testing.T) {
	input := "title,date\nOrphan,2023-01-01\n"

	if _, err := ReadGroups(strings.NewReader(input)); err == nil {
		t.Fatal("expected an error for a header without id or username")
	}
}

func TestReadGroups_EmptyFile(t *testing.T) {
	if _, err := ReadGroups(strings.NewReader("")); err == nil {
		t.Fatal("expected an error for an empty file")
	}
}

func TestReadGroups_ShortRows(t *testing.T) {
	input := "id,username,title\n1,one\n"

	records, err := ReadGroups(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records[0].Title != "" {
		t.Errorf("missing cell should read as empty, got %q", records[0].Title)
	}
}

func TestReadEnriched_Roundtrip(t *testing.T) {
	var buf strings.Builder
	w := NewWriter(&buf)
	original := enricher.EnrichedRecord{
		GroupRecord:  enricher.GroupRecord{ID: 42, Username: "answer", Title: "The Answer", Date: "2023-03-03"},
		ActualTitle:  "The Real Answer",
		MembersCount: 4242,
		ChatType:     "supergroup",
		AccessStatus: enricher.StatusSuccess,
	}
	if err := w.Write(original); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	records, err := ReadEnriched(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.ID != 42 || got.ActualTitle != "The Real Answer" || got.MembersCount != 4242 {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
	if got.AccessStatus != enricher.StatusSuccess {
		t.Errorf("expected success status, got %q", got.AccessStatus)
	}
}

func TestReadEnriched_Empty(t *testing.T) {
	records, err := ReadEnriched(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records != nil {
		t.Errorf("expected nil for empty input, got %+v", records)
	}
}
