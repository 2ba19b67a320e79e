// Command rankctl drives the ranking engine from the command line: useful
// for seeding a venue, running a single task/comparison cycle, or kicking
// off a reputation/reprocess pass without going through the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gravadigital/rankengine-api/internal/config"
	"github.com/gravadigital/rankengine-api/internal/domain/ranking"
	"github.com/gravadigital/rankengine-api/internal/storage/postgres"
	"github.com/gravadigital/rankengine-api/internal/storage/sqlite"
)

var (
	localPath string
	venueID   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rankctl",
	Short: "Operate the ranking engine outside the HTTP API",
	Long: `rankctl exposes the ranking engine's entry points as subcommands.
By default it connects to the configured PostgreSQL database; pass
--local <path> to run against an embedded SQLite store instead (use
":memory:" for a throwaway venue).`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&localPath, "local", "", "run against an embedded SQLite store at this path instead of PostgreSQL")
	rootCmd.PersistentFlags().StringVar(&venueID, "venue", "", "venue id to operate on")
	rootCmd.MarkPersistentFlagRequired("venue")

	rootCmd.AddCommand(nextTaskCmd)
	rootCmd.AddCommand(recordComparisonCmd)
	rootCmd.AddCommand(runReputationCmd)
	rootCmd.AddCommand(reprocessCmd)

	nextTaskCmd.Flags().String("user", "", "reviewer id requesting a task")
	nextTaskCmd.Flags().Bool("can-rank-own", false, "allow offering the reviewer their own submission")
	nextTaskCmd.Flags().Float64("cost-coefficient", 0, "rank_cost_coefficient for sampling")
	nextTaskCmd.MarkFlagRequired("user")

	recordComparisonCmd.Flags().String("user", "", "reviewer id submitting the ordering")
	recordComparisonCmd.Flags().StringSlice("ordering", nil, "item ids, lowest to highest")
	recordComparisonCmd.Flags().String("new-item", "", "the item new to this reviewer, if any")
	recordComparisonCmd.Flags().Float64("alpha", 0.6, "annealing factor for this update")
	recordComparisonCmd.MarkFlagRequired("user")
	recordComparisonCmd.MarkFlagRequired("ordering")

	runReputationCmd.Flags().Float64("alpha", 0.5, "annealing factor")
	runReputationCmd.Flags().Int("iterations", 4, "outer fixed-point iterations")
	runReputationCmd.Flags().Int("last-k", 0, "inner passes per iteration; 0 selects chronological-all mode")

	reprocessCmd.Flags().Float64("alpha", 0.5, "annealing factor")
	reprocessCmd.Flags().Bool("twice", false, "replay a second time in reverse-chronological order")
}

// engineFor builds a ranking.Engine against either the embedded SQLite
// store (--local) or PostgreSQL, returning a closer the caller must run
// once the command finishes.
func engineFor() (*ranking.Engine, func() error, error) {
	if localPath != "" {
		port, err := sqlite.Open(localPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open local store: %w", err)
		}
		return ranking.NewEngine(port), port.Close, nil
	}

	cfg := config.Load()
	db, err := postgres.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	port := postgres.NewRankingDataPort(db)
	closer := func() error {
		port.Rollback()
		return postgres.Close()
	}
	return ranking.NewEngine(port), closer, nil
}

var nextTaskCmd = &cobra.Command{
	Use:   "next-task",
	Short: "Offer the next comparison item to a reviewer",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		canRankOwn, _ := cmd.Flags().GetBool("can-rank-own")
		costCoefficient, _ := cmd.Flags().GetFloat64("cost-coefficient")

		engine, closer, err := engineFor()
		if err != nil {
			return err
		}
		defer closer()

		itemID, err := engine.NextTask(context.Background(), venueID, user, nil, canRankOwn, costCoefficient)
		if err != nil {
			return err
		}
		if itemID == "" {
			fmt.Println("no eligible item")
			return nil
		}
		fmt.Println(itemID)
		return nil
	},
}

var recordComparisonCmd = &cobra.Command{
	Use:   "record-comparison",
	Short: "Fold a reviewer-submitted ordering into the venue's beliefs",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		ordering, _ := cmd.Flags().GetStringSlice("ordering")
		newItem, _ := cmd.Flags().GetString("new-item")
		alpha, _ := cmd.Flags().GetFloat64("alpha")

		engine, closer, err := engineFor()
		if err != nil {
			return err
		}
		defer closer()

		if err := engine.RecordComparison(context.Background(), venueID, user, ordering, newItem, alpha); err != nil {
			return err
		}
		fmt.Println("comparison recorded")
		return nil
	},
}

var runReputationCmd = &cobra.Command{
	Use:   "run-reputation",
	Short: "Run the fixed-point reputation loop for a venue",
	RunE: func(cmd *cobra.Command, args []string) error {
		alpha, _ := cmd.Flags().GetFloat64("alpha")
		iterations, _ := cmd.Flags().GetInt("iterations")
		lastK, _ := cmd.Flags().GetInt("last-k")

		var lastKPtr *int
		if lastK > 0 {
			lastKPtr = &lastK
		}

		engine, closer, err := engineFor()
		if err != nil {
			return err
		}
		defer closer()

		if err := engine.RunReputation(context.Background(), venueID, alpha, iterations, lastKPtr); err != nil {
			return err
		}
		fmt.Println("reputation system run")
		return nil
	},
}

var reprocessCmd = &cobra.Command{
	Use:   "reprocess",
	Short: "Replay a venue's full comparison history from scratch",
	RunE: func(cmd *cobra.Command, args []string) error {
		alpha, _ := cmd.Flags().GetFloat64("alpha")
		twice, _ := cmd.Flags().GetBool("twice")

		engine, closer, err := engineFor()
		if err != nil {
			return err
		}
		defer closer()

		if err := engine.Reprocess(context.Background(), venueID, alpha, twice); err != nil {
			return err
		}
		fmt.Println("venue reprocessed")
		return nil
	},
}
