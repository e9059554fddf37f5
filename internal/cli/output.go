package cli

import (
	"fmt"
	"io"

	appsync "github.com/platewise/pos-sync-backend/internal/application/sync"
)

// PrintSyncResults writes a human-readable summary of a sync run.
func PrintSyncResults(w io.Writer, results []appsync.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No connections to sync.")
		return
	}

	var ok, skipped, failed int
	for _, r := range results {
		switch r.Status {
		case appsync.StatusSuccess:
			ok++
			fmt.Fprintf(w, "  ✓ %s (user %s): %d transactions, %d days aggregated\n",
				r.Provider, r.UserID, r.Count, r.AggregatedDays)
		case appsync.StatusSkipped:
			skipped++
			fmt.Fprintf(w, "  - %s (user %s): skipped, synced recently\n", r.Provider, r.UserID)
		case appsync.StatusError:
			failed++
			fmt.Fprintf(w, "  ✗ %s (user %s): %s\n", r.Provider, r.UserID, r.Error)
		}
	}

	fmt.Fprintf(w, "\nSynced %d connection(s): %d ok, %d skipped, %d failed\n",
		len(results), ok, skipped, failed)
}
