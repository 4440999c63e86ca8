package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/groupmeta/internal/csvio"
	"github.com/blockedby/groupmeta/internal/enricher"
	"github.com/blockedby/groupmeta/internal/logger"
	"github.com/blockedby/groupmeta/internal/telegram"
)

// fakeFetcher serves canned metadata without touching the network.
type fakeFetcher struct {
	infos map[string]*telegram.GroupInfo
	calls int
}

func (f *fakeFetcher) GetGroupInfo(_ context.Context, ref telegram.GroupRef) (*telegram.GroupInfo, error) {
	f.calls++
	if info, ok := f.infos[ref.String()]; ok {
		return info, nil
	}
	return nil, &telegram.FetchError{
		Kind: telegram.KindAccessDenied,
		Err:  fmt.Errorf("CHANNEL_PRIVATE"),
	}
}

// TestPipeline_CSVToCSV runs the whole flow: parse an input file, enrich
// every record through a fake fetcher, stream rows to the output file, then
// resume and verify nothing is fetched twice.
func TestPipeline_CSVToCSV(t *testing.T) {
	skipUnlessIntegration(t)

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "groups.csv")
	outputPath := filepath.Join(dir, "enriched.csv")

	input := strings.Join([]string{
		"id,username,title,date",
		"1001,golang,Go Group,2023-01-01",
		",private_club,The Club,2023-02-02",
		",,No Handle,2023-03-03",
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(inputPath, []byte(input), 0o644))

	fetcher := &fakeFetcher{infos: map[string]*telegram.GroupInfo{
		"1001": {ID: 1001, Title: "Go Group Official", Username: "golang",
			Type: telegram.ChatTypeSupergroup, MembersCount: 9000},
	}}

	// first run processes everything
	records, err := csvio.ReadGroupsFile(inputPath)
	require.NoError(t, err)
	require.Len(t, records, 3)

	svc := enricher.NewService(fetcher, nil, logger.Get())
	out, err := csvio.NewFileWriter(outputPath, false)
	require.NoError(t, err)

	results := svc.EnrichAll(context.Background(), records)
	for _, rec := range results {
		require.NoError(t, out.Write(rec))
	}
	require.NoError(t, out.Close())

	require.Len(t, results, 3)
	assert.Equal(t, enricher.StatusSuccess, results[0].AccessStatus)
	assert.Equal(t, 9000, results[0].MembersCount)
	assert.Equal(t, enricher.StatusAccessDenied, results[1].AccessStatus)
	assert.Equal(t, enricher.StatusError, results[2].AccessStatus)
	assert.Equal(t, "missing identifier", results[2].ErrorMessage)
	assert.Equal(t, 2, fetcher.calls, "the record without identifiers must not be fetched")

	// second run resumes from the output file and has nothing left to do
	previous, err := csvio.ReadEnrichedFile(outputPath)
	require.NoError(t, err)
	require.Len(t, previous, 3)

	fresh, skipped := enricher.IndexFromRecords(previous).FilterNew(records)
	assert.Equal(t, 2, skipped, "both identified groups were already processed")
	require.Len(t, fresh, 1, "only the unidentifiable record has no index entry")
	assert.Equal(t, "No Handle", fresh[0].Title)
	assert.Equal(t, 2, fetcher.calls, "resume must not trigger new fetches")

	stats := enricher.Summarize(results)
	assert.Equal(t, 1, stats.Successful)
	assert.Equal(t, 1, stats.AccessDenied)
	assert.Equal(t, 1, stats.Errors)
}
