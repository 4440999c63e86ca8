package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/blockedby/groupmeta/internal/csvio"
	"github.com/blockedby/groupmeta/internal/enricher"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "clean":
		err = runClean(os.Args[2:])
	case "merge":
		err = runMerge(os.Args[2:])
	case "diff":
		err = runDiff(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: groups-csv <command>")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  analyze <enriched.csv>                 print run statistics and top groups")
	fmt.Println("  clean   <input.csv> <output.csv>       normalize usernames, drop unusable rows")
	fmt.Println("  merge   <old.csv> <new.csv> <out.csv>  merge runs, newer rows win")
	fmt.Println("  diff    <old.csv> <new.csv>            show what changed between runs")
}

func runAnalyze(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("analyze needs exactly one file")
	}

	records, err := csvio.ReadEnrichedFile(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no records found")
		return nil
	}

	stats := enricher.Summarize(records)
	fmt.Printf("total:         %d\n", stats.Total)
	fmt.Printf("successful:    %d\n", stats.Successful)
	fmt.Printf("access denied: %d\n", stats.AccessDenied)
	fmt.Printf("errors:        %d\n", stats.Errors)

	successful := make([]enricher.EnrichedRecord, 0, len(records))
	for _, rec := range records {
		if rec.AccessStatus == enricher.StatusSuccess {
			successful = append(successful, rec)
		}
	}
	if len(successful) == 0 {
		return nil
	}

	sort.Slice(successful, func(i, j int) bool {
		return successful[i].MembersCount > successful[j].MembersCount
	})

	fmt.Println("\ntop groups by members:")
	for i, rec := range successful {
		if i == 10 {
			break
		}
		fmt.Printf("  %8d  %s (%s)\n", rec.MembersCount, rec.ActualTitle, rec.ChatType)
	}
	return nil
}

func runClean(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("clean needs an input and an output file")
	}

	records, err := csvio.ReadGroupsFile(args[0])
	if err != nil {
		return err
	}

	seen := enricher.NewProcessedIndex()
	kept := make([]enricher.GroupRecord, 0, len(records))
	dropped, duplicates := 0, 0
	for _, rec := range records {
		rec.Username = enricher.NormalizeUsername(rec.Username)
		if rec.Ref().IsZero() {
			dropped++
			continue
		}
		if seen.Contains(rec) {
			duplicates++
			continue
		}
		seen.Add(enricher.EnrichedRecord{GroupRecord: rec})
		kept = append(kept, rec)
	}

	out := make([]enricher.EnrichedRecord, len(kept))
	for i, rec := range kept {
		out[i] = enricher.EnrichedRecord{GroupRecord: rec}
	}
	if err := csvio.WriteAll(args[1], out); err != nil {
		return err
	}

	fmt.Printf("kept %d, dropped %d without identifier, removed %d duplicates\n",
		len(kept), dropped, duplicates)
	return nil
}

func runMerge(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("merge needs two input files and an output file")
	}

	older, err := csvio.ReadEnrichedFile(args[0])
	if err != nil {
		return err
	}
	newer, err := csvio.ReadEnrichedFile(args[1])
	if err != nil {
		return err
	}

	// newer rows replace older ones for the same group, older-only rows survive
	index := enricher.IndexFromRecords(newer)
	merged := make([]enricher.EnrichedRecord, 0, len(older)+len(newer))
	kept := 0
	for _, rec := range older {
		if index.Contains(rec.GroupRecord) {
			continue
		}
		merged = append(merged, rec)
		kept++
	}
	merged = append(merged, newer...)

	if err := csvio.WriteAll(args[2], merged); err != nil {
		return err
	}
	fmt.Printf("merged %d records (%d carried over from the older run)\n", len(merged), kept)
	return nil
}

func runDiff(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("diff needs two files")
	}

	older, err := csvio.ReadEnrichedFile(args[0])
	if err != nil {
		return err
	}
	newer, err := csvio.ReadEnrichedFile(args[1])
	if err != nil {
		return err
	}

	diff := enricher.Diff(older, newer)
	if diff.Empty() {
		fmt.Println("no changes")
		return nil
	}

	for _, ch := range diff.Changed {
		name := ch.NewTitle
		if name == "" {
			name = ch.Username
		}
		fmt.Printf("~ %s", name)
		if ch.TitleChanged {
			fmt.Printf("  title: %q -> %q", ch.OldTitle, ch.NewTitle)
		}
		if ch.MembersChanged {
			fmt.Printf("  members: %+d", ch.MembersDelta)
		}
		if ch.StatusChanged {
			fmt.Printf("  status: %s -> %s", ch.OldStatus, ch.NewStatus)
		}
		fmt.Println()
	}
	for _, rec := range diff.Added {
		fmt.Printf("+ %s\n", displayName(rec))
	}
	for _, rec := range diff.Removed {
		fmt.Printf("- %s\n", displayName(rec))
	}
	return nil
}

func displayName(rec enricher.EnrichedRecord) string {
	if rec.ActualTitle != "" {
		return rec.ActualTitle
	}
	if rec.Username != "" {
		return "@" + enricher.NormalizeUsername(rec.Username)
	}
	return fmt.Sprintf("%d", rec.ID)
}
