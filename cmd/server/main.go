package main

import (
	"fmt"
	"os"

	"github.com/healthup/internal/config"
	"github.com/healthup/internal/db"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "healthup",
	Short: "HealthUp API server",
	// 不带子命令时直接启动服务
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN(), false)
		if err != nil {
			return err
		}
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the reward, challenge, lesson and exercise catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		if path, _ := cmd.Flags().GetString("catalog"); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read catalog: %w", err)
			}
			raw = data
		}
		catalog, err := db.LoadCatalog(raw)
		if err != nil {
			return err
		}

		cfg := config.Load()
		gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN(), false)
		if err != nil {
			return err
		}
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		stats, err := db.Seed(gdb, catalog)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded rewards=%d challenges=%d categories=%d lessons=%d exercises=%d\n",
			stats.Rewards, stats.Challenges, stats.Categories, stats.Lessons, stats.Exercises)
		return nil
	},
}

func init() {
	seedCmd.Flags().String("catalog", "", "Path to a catalog YAML file (defaults to the built-in catalog)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
