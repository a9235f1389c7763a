package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fuzzydedup/internal/config"
	"github.com/fuzzydedup/internal/db"
	"github.com/fuzzydedup/internal/dedupe"
	"github.com/fuzzydedup/internal/store"
	"github.com/fuzzydedup/internal/tabular"
)

func main() {
	config.LoadEnv()

	rootCmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Fuzzy record deduplication",
		Long:  `Finds near-duplicate records in CSV and XLSX files using Jaro-Winkler similarity with prefix blocking`,
	}

	rootCmd.AddCommand(createRunCmd())
	rootCmd.AddCommand(createPreviewCmd())
	rootCmd.AddCommand(createDBCmd())
	rootCmd.AddCommand(createPingCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// createRunCmd creates the run subcommand
func createRunCmd() *cobra.Command {
	var (
		threshold    float64
		prefixLength int
		workers      int
		output       string
		save         bool
		debugMode    bool
	)

	runCmd := &cobra.Command{
		Use:   "run [filename]",
		Short: "Deduplicate a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			filename := args[0]

			table, err := tabular.ReadFile(filename)
			if err != nil {
				log.Fatalf("Failed to read %s: %v", filename, err)
			}
			fmt.Printf("Loaded %d records from %s\n", len(table.Rows), filename)

			opts := dedupe.Options{
				Threshold:    threshold,
				PrefixLength: prefixLength,
				Workers:      workers,
				Debug:        debugMode,
				Progress: func(done, total int) {
					fmt.Printf("\rComparing: %d/%d", done, total)
				},
			}

			started := time.Now()
			assignments, err := dedupe.ClusterDuplicates(table.RecordTexts(), opts)
			if err != nil {
				fmt.Println()
				log.Fatalf("Deduplication failed: %v", err)
			}
			fmt.Println()

			grouped, groups := dedupe.Summarize(assignments)
			elapsed := time.Since(started)

			color.Green("Deduplication complete in %v", elapsed.Round(time.Millisecond))
			fmt.Printf("  Records:          %d\n", len(assignments))
			fmt.Printf("  Duplicate groups: %d\n", groups)
			fmt.Printf("  Grouped records:  %d\n", grouped)
			if groups == 0 {
				color.Yellow("No duplicates found at threshold %.2f", threshold)
			}

			if output != "" {
				annotated, err := tabular.AppendResults(table, assignments)
				if err != nil {
					log.Fatalf("Failed to annotate results: %v", err)
				}
				if err := tabular.WriteFile(annotated, output); err != nil {
					log.Fatalf("Failed to write %s: %v", output, err)
				}
				fmt.Printf("Results written to %s\n", output)
			}

			if save {
				saveRun(table, assignments, opts, started)
			}
		},
	}

	runCmd.Flags().Float64VarP(&threshold, "threshold", "t", dedupe.DefaultThreshold, "similarity threshold (0.5-1.0)")
	runCmd.Flags().IntVarP(&prefixLength, "prefix-length", "p", dedupe.DefaultPrefixLength, "blocking prefix length (1-10)")
	runCmd.Flags().IntVarP(&workers, "workers", "w", 1, "parallel workers (1 = serial)")
	runCmd.Flags().StringVarP(&output, "output", "o", "", "write annotated results to this CSV or XLSX file")
	runCmd.Flags().BoolVar(&save, "save", false, "persist the run to the database")
	runCmd.Flags().BoolVar(&debugMode, "debug", false, "enable debug output")

	return runCmd
}

func saveRun(table *tabular.Table, assignments []dedupe.Assignment, opts dedupe.Options, started time.Time) {
	conn, err := db.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	st := store.New(conn.DB)
	if err := st.Init(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	grouped, groups := dedupe.Summarize(assignments)
	buckets := dedupe.BuildBuckets(table.RecordTexts(), opts.PrefixLength)

	run := &store.Run{
		SourceName:     table.Source,
		RecordCount:    len(assignments),
		Threshold:      opts.Threshold,
		PrefixLength:   opts.PrefixLength,
		GroupCount:     groups,
		GroupedRecords: grouped,
		Comparisons:    dedupe.TotalComparisons(buckets),
		StartedAt:      started,
		CompletedAt:    time.Now(),
	}

	if err := st.SaveRun(run, assignments); err != nil {
		log.Fatalf("Failed to save run: %v", err)
	}
	fmt.Printf("Run saved as %s\n", run.ID)
}

// createPreviewCmd creates the preview subcommand
func createPreviewCmd() *cobra.Command {
	var prefixLength int

	previewCmd := &cobra.Command{
		Use:   "preview [filename]",
		Short: "Show comparison counts without running the deduplication",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			table, err := tabular.ReadFile(args[0])
			if err != nil {
				log.Fatalf("Failed to read %s: %v", args[0], err)
			}

			n := len(table.Rows)
			buckets := dedupe.BuildBuckets(table.RecordTexts(), prefixLength)
			blocked := dedupe.TotalComparisons(buckets)
			possible := dedupe.PossibleComparisons(n)

			fmt.Printf("Records:              %d\n", n)
			fmt.Printf("Buckets:              %d\n", len(buckets))
			fmt.Printf("Blocked comparisons:  %d\n", blocked)
			fmt.Printf("Possible comparisons: %d\n", possible)
			if possible > 0 {
				reduction := 100 * (1 - float64(blocked)/float64(possible))
				fmt.Printf("Reduction:            %.1f%%\n", reduction)
			}
		},
	}

	previewCmd.Flags().IntVarP(&prefixLength, "prefix-length", "p", dedupe.DefaultPrefixLength, "blocking prefix length (1-10)")

	return previewCmd
}

// createDBCmd creates the db subcommand group
func createDBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management",
	}

	dbCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			conn, err := db.NewConnection()
			if err != nil {
				log.Fatalf("Failed to connect to database: %v", err)
			}
			defer conn.Close()

			if err := store.New(conn.DB).Init(); err != nil {
				log.Fatalf("Failed to initialize schema: %v", err)
			}
			color.Green("Schema ready")
		},
	})

	return dbCmd
}

// createPingCmd creates a command to test database connectivity
func createPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity",
		Run: func(cmd *cobra.Command, args []string) {
			conn, err := db.NewConnection()
			if err != nil {
				log.Fatalf("Failed to connect to database: %v", err)
			}
			defer conn.Close()

			fmt.Println("Database connection successful!")

			var count int
			err = conn.DB.QueryRow("SELECT COUNT(*) FROM dedupe_run").Scan(&count)
			if err != nil {
				log.Printf("Error counting dedupe_run records: %v", err)
			} else {
				fmt.Printf("Persisted runs: %d\n", count)
			}
		},
	}
}
