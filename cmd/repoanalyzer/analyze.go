package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/repoanalyzer/internal/adapter/driving/cli"
	"github.com/ericfisherdev/repoanalyzer/internal/config"
	"github.com/ericfisherdev/repoanalyzer/internal/domain/model"
)

func newAnalyzeCmd() *cobra.Command {
	var single bool

	cmd := &cobra.Command{
		Use:   "analyze <username>",
		Short: "Analyze a user's top repositories and print the results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, os.Stderr)

			svc, err := newAnalysisService(cfg, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			username := args[0]

			profile, err := svc.Profile(ctx, username)
			if err != nil {
				return fmt.Errorf("fetching profile of %s: %w", username, err)
			}

			var results []model.AnalysisResult
			if single {
				result, err := svc.AnalyzeMostStarred(ctx, username)
				if err != nil {
					return fmt.Errorf("analyzing %s: %w", username, err)
				}
				results = []model.AnalysisResult{result}
			} else {
				results, err = svc.AnalyzeTop(ctx, username)
				if err != nil {
					return fmt.Errorf("analyzing %s: %w", username, err)
				}
			}

			out := cmd.OutOrStdout()
			if err := cli.RenderProfile(out, *profile); err != nil {
				return err
			}
			return cli.RenderAnalyses(out, results)
		},
	}

	cmd.Flags().BoolVar(&single, "single", false, "analyze only the most-starred repository")

	return cmd
}
