// Package history wires the CLI history command: list past audit runs.
package history

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/davyos/siteforge/pkg/db"
)

func HistoryAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("root"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No audit runs recorded")
		return nil
	}

	fmt.Printf("%-6s %-20s %-8s %-8s %-8s %-10s\n",
		"ID", "Created", "Score", "Files", "Issues", "External")
	fmt.Println(strings.Repeat("-", 70))

	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-8d %-8d %-8d %-10d\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Score,
			r.FileCount,
			r.IssueCount,
			r.ExternalCount,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	return nil
}
