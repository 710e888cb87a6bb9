package main

import (
	"fmt"

	"github.com/pevans/newscrape/logger"
	"github.com/pevans/newscrape/pipeline"
	"github.com/pevans/newscrape/scraper"
	"github.com/pevans/newscrape/store"
	"github.com/spf13/cobra"
)

func (a *app) extractCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Scrape every configured site and write one CSV per site and day",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(configFile)
			if err != nil {
				return err
			}

			driver := pipeline.New(cfg, a.log)
			sites, err := scraper.LoadSites(cfg, driver.Registry)
			if err != nil {
				return err
			}

			folder, err := cfg.OutputFolder()
			if err != nil {
				return err
			}

			summary := driver.Extract(cmd.Context(), sites, folder)
			printSummary(cmd.OutOrStdout(), summary)
			if summary.Failed() == len(summary.Sites) && len(summary.Sites) > 0 {
				return fmt.Errorf("all %d sites failed", len(summary.Sites))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config_file", "config.yaml", "path to the pipeline configuration file")
	return cmd
}

func (a *app) transformCommand() *cobra.Command {
	var inputs string

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Clean and enrich extracted news into a JSON intermediate",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.log.Info("reading inputs", logger.String("path", inputs))
			_, err := a.standaloneDriver().Transform(inputs)
			return err
		},
	}

	cmd.Flags().StringVar(&inputs, "inputs", "", "path to the extraction output folder")
	_ = cmd.MarkFlagRequired("inputs")
	return cmd
}

func (a *app) loadCommand() *cobra.Command {
	var inputs string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Insert transformed news into the articles database",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(a.dsn(), a.log)
			if err != nil {
				return err
			}
			defer st.Close()

			_, err = a.standaloneDriver().Load(cmd.Context(), inputs, st)
			return err
		},
	}

	cmd.Flags().StringVar(&inputs, "inputs", "", "path to the folder holding transform output")
	_ = cmd.MarkFlagRequired("inputs")
	return cmd
}

func (a *app) runCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run extract, transform and load in sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(configFile)
			if err != nil {
				return err
			}
			summary, err := pipeline.New(cfg, a.log).Run(cmd.Context(), cfg)
			printSummary(cmd.OutOrStdout(), summary)
			return err
		},
	}

	cmd.Flags().StringVar(&configFile, "config_file", "config.yaml", "path to the pipeline configuration file")
	return cmd
}
