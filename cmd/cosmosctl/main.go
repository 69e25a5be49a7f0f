// Command cosmosctl runs maintenance tasks against the quiz database.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vytor/cosmosquiz/internal/config"
	"github.com/vytor/cosmosquiz/internal/db"
	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/repository/sqlite"
	"github.com/vytor/cosmosquiz/internal/seed"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbPath, logLevel string
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "cosmosctl",
		Short:         "Maintenance commands for the Cosmos quiz store",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetDefault(logger.New(logger.WithLevel(logger.ParseLevel(logLevel))))
		},
	}
	root.PersistentFlags().StringVar(&dbPath, "db", cfg.DBPath, "SQLite database path")
	root.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "DEBUG, INFO, WARN or ERROR")

	open := func() (*db.DB, error) { return db.Open(dbPath) }
	root.AddCommand(newSeedCmd(open), newResetCmd(open), newQuizzesCmd(open))
	return root
}

type opener func() (*db.DB, error)

func newSeedCmd(open opener) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Install the built-in sample quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			ctx := logger.NewContext(cmd.Context(), logger.Default())
			gw := sqlite.NewGateway(database.DB)
			seeder := seed.NewSeeder(gw.Quizzes, gw.Settings)
			if force {
				if err := seeder.Seed(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "missing samples installed")
				return nil
			}
			seeded, err := seeder.SeedOnce(ctx)
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintf(cmd.OutOrStdout(), "%d sample quizzes installed\n", seed.SampleCount())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "samples already installed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "reinstall samples that were deleted, ignoring the seed marker")
	return cmd
}

func newResetCmd(open opener) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every attempt, favorite and progress record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			database, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.ResetProgress(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "progress data reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func newQuizzesCmd(open opener) *cobra.Command {
	var category string
	var builtIn bool
	cmd := &cobra.Command{
		Use:   "quizzes",
		Short: "List stored quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := models.QuizFilter{BuiltInOnly: builtIn}
			if category != "" {
				m, ok := models.ParseMode(category)
				if !ok {
					return fmt.Errorf("unknown mode %q", category)
				}
				filter.Category = m
			}

			database, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			quizzes, err := sqlite.NewQuizRepository(database.DB).List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSHARE CODE\tTITLE\tCARDS\tOWNER")
			for _, q := range quizzes {
				owner := "built-in"
				if q.CreatedBy != nil {
					owner = *q.CreatedBy
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", q.ID, q.ShareCode, q.Title, len(q.Cards), owner)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only quizzes playable in this mode")
	cmd.Flags().BoolVar(&builtIn, "built-in", false, "only built-in sample quizzes")
	return cmd
}
