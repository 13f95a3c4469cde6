package cmd

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/getyour/gyadmin/internal/iodb"
	"github.com/getyour/gyadmin/internal/ioextract"
	"github.com/getyour/gyadmin/pkg/extract"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getExtractCmd returns the extract command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getExtractCmd() *cobra.Command {
	var scope extractScope
	var profile string

	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Produce dashboard CSV extracts",
		Long: `Extract produces the CSV reports the program dashboards are
built from and fetches the income documents of applicants awaiting
verification.

Without scope flags every extract runs:
  - the global applicant roster with per-program enrollment columns
  - the income verification queue, followed by document downloads
  - one per-program extract covering renewals, new applicants and
    updated records (change markers are reset afterwards)
  - the dashboard feedback table

Files are dated and written to the configured output directory;
previously downloaded documents move into a complete/ subdirectory.

Examples:
  gyadmin extract
  gyadmin extract --income
  gyadmin extract --programs --feedback --profile getyour_dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, scope, profile)
		},
	}

	extractCmd.Flags().BoolVar(&scope.global, "global", false,
		"the global applicant roster only")
	extractCmd.Flags().BoolVar(&scope.income, "income", false,
		"the income verification queue and document downloads only")
	extractCmd.Flags().BoolVar(&scope.programs, "programs", false,
		"the per-program extracts only")
	extractCmd.Flags().BoolVar(&scope.feedback, "feedback", false,
		"the feedback extract only")
	extractCmd.Flags().StringVarP(&profile, "profile", "p", "",
		"environment profile to read (default from config)")

	return extractCmd
}

type extractScope struct {
	global, income, programs, feedback bool
}

func (s extractScope) all() bool {
	return !s.global && !s.income && !s.programs && !s.feedback
}

func runExtract(
	_ *cobra.Command, _ []string, scope extractScope, profile string,
) error {
	ctx := context.Background()

	if profile == "" {
		profile = cfg.Extract.Profile
	}

	provider := iodb.NewProvider(cfg)
	h, err := provider.Open(ctx, profile)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer provider.CloseAll(ctx)

	var blob ioextract.BlobStore
	if cfg.Blob.Bucket != "" {
		blob, err = ioextract.NewS3Store(ctx, cfg.Blob)
		if err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	} else {
		gn.Warn("No document bucket configured; " +
			"downloads will be skipped.")
	}

	ex := ioextract.New(cfg, h, blob)

	var sum extract.Summary
	steps := []struct {
		enabled bool
		run     func(context.Context) (extract.Summary, error)
	}{
		{scope.all(), ex.ExportAll},
		{!scope.all() && scope.global, ex.ExportGlobal},
		{!scope.all() && scope.income, ex.ExportIncome},
		{!scope.all() && scope.programs, ex.ExportPrograms},
		{!scope.all() && scope.feedback, ex.ExportFeedback},
	}
	for _, step := range steps {
		if !step.enabled {
			continue
		}
		s, err := step.run(ctx)
		if err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		sum.Merge(s)
	}

	for _, file := range sum.Files {
		gn.Info("Wrote <em>%s</em> (%d rows)", file, sum.Rows[file])
	}
	if sum.Downloaded > 0 {
		gn.Info("Downloaded <em>%d</em> documents (%s)",
			sum.Downloaded, humanize.Bytes(uint64(sum.Bytes)))
	}
	if sum.ResetUsers > 0 {
		gn.Info("Cleared change markers for %d users", sum.ResetUsers)
	}
	return nil
}
