// Package audit wires the CLI audit command: the site graph audit, the
// external liveness probe, the printed report and the history record.
package audit

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	buildcmd "github.com/davyos/siteforge/internal/build"
	"github.com/davyos/siteforge/models"
	auditpkg "github.com/davyos/siteforge/pkg/audit"
	dbpkg "github.com/davyos/siteforge/pkg/db"
	"github.com/davyos/siteforge/pkg/probe"
)

func AuditAction(c *cli.Context) error {
	logger := buildcmd.NewLogger(c)
	root := c.String("root")

	cfg, err := buildcmd.LoadConfig(c, logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	report := models.NewReport(cfg.Penalties)
	auditor := auditpkg.New(root, cfg, report, logger)
	if err := auditor.Run(); err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	externals := auditor.ExternalLinks()
	if !c.Bool("skip-external") && len(externals) > 0 {
		logger.Info("checking external links", "count", len(externals), "workers", cfg.Probe.Workers)
		checker := probe.New(
			time.Duration(cfg.Probe.TimeoutSeconds)*time.Second,
			cfg.Probe.Workers,
			cfg.Probe.UserAgent,
		)
		checker.Check(c.Context, externals, func(r probe.Result) {
			if !r.Dead() {
				return
			}
			status := "connection error"
			if r.Status > 0 {
				status = fmt.Sprintf("status %d", r.Status)
			}
			report.Add("(external)", "dead_link_external", models.SeverityError,
				fmt.Sprintf("External dead link: %s (%s)", r.URL, status))
		})
	}

	printReport(report, auditor, cfg)

	if !c.Bool("no-history") {
		database, err := dbpkg.Open(root)
		if err != nil {
			logger.Warn("could not open history database", "error", err)
			return nil
		}
		defer database.Close()

		runID, err := database.SaveRun(report, len(auditor.Files()), len(externals))
		if err != nil {
			logger.Warn("could not save audit run", "error", err)
			return nil
		}
		logger.Info("saved audit run", "run_id", runID, "score", report.Score())
	}
	return nil
}

// printReport writes the human-readable report: issues grouped by file, the
// top pages by inbound links, the final score.
func printReport(report *models.Report, auditor *auditpkg.Auditor, cfg *models.SiteConfig) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("SITE AUDIT REPORT")
	fmt.Println(strings.Repeat("=", 50) + "\n")

	byFile := make(map[string][]models.Issue)
	for _, issue := range report.Issues() {
		byFile[issue.File] = append(byFile[issue.File], issue)
	}

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, f := range files {
		fmt.Printf("File: %s\n", f)
		for _, issue := range byFile[f] {
			fmt.Printf("  [%s] %s\n", issue.Severity, issue.Message)
		}
		fmt.Println()
	}

	top := auditor.Graph().Top(cfg.Audit.TopPages)
	if len(top) > 0 {
		fmt.Printf("Top %d pages by inbound links:\n", len(top))
		for _, rank := range top {
			fmt.Printf("  - %s: %d links\n", rank.Page, rank.Inbound)
		}
		fmt.Println()
	}

	fmt.Println(strings.Repeat("-", 30))
	fmt.Printf("Final Score: %d/%d\n", report.Score(), models.MaxScore)
}
