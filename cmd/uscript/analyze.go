package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"uscript/internal/config"
	"uscript/internal/diag"
	"uscript/internal/diagfmt"
	"uscript/internal/driver"
	"uscript/internal/ui"
)

var analyzeCmd = &cobra.Command{
	Use:          "analyze [flags] [path]",
	Short:        "Analyze a workspace of script files",
	Long:         `Analyze parses every .uc file under a directory, resolves cross-file references, and reports diagnostics`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	analyzeCmd.Flags().Int("jobs", 0, "parse parallelism (0 = all cores)")
	analyzeCmd.Flags().Bool("no-cache", false, "skip the on-disk diagnostics cache")
	analyzeCmd.Flags().Bool("progress", false, "force the interactive progress view")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	jobs, _ := cmd.Flags().GetInt("jobs")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	forceProgress, _ := cmd.Flags().GetBool("progress")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	cfg, err := config.ForDir(target)
	if err != nil {
		return err
	}

	opts := driver.Options{
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics(cmd),
		Sema:           cfg.SemaOptions(),
	}
	if !noCache {
		if cache, cacheErr := driver.OpenDiskCache("uscript"); cacheErr == nil {
			opts.Cache = cache
		}
	}

	showProgress := forceProgress || (format == "pretty" && !quiet && isTerminal(os.Stdout))
	var result *driver.Result
	if showProgress {
		files, listErr := driver.ListScriptFiles(target)
		if listErr != nil {
			return listErr
		}
		events := make(chan driver.Event, 64)
		opts.Events = events

		errCh := make(chan error, 1)
		go func() {
			var runErr error
			result, runErr = driver.AnalyzeWorkspace(cmd.Context(), target, opts)
			errCh <- runErr
		}()
		if uiErr := ui.Run("analyzing "+target, files, events); uiErr != nil {
			// Drain so the pipeline never blocks on a dead view.
			for range events {
			}
		}
		if runErr := <-errCh; runErr != nil {
			return runErr
		}
	} else {
		if result, err = driver.AnalyzeWorkspace(cmd.Context(), target, opts); err != nil {
			return err
		}
	}

	switch format {
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeRelative,
			Max:              opts.MaxDiagnostics,
		}
		if err := diagfmt.JSON(os.Stdout, result.Bag, result.FileSet, jsonOpts); err != nil {
			return err
		}
	default:
		prettyOpts := diagfmt.PrettyOpts{
			Color:     colorEnabled(cmd, os.Stdout),
			PathMode:  diagfmt.PathModeRelative,
			ShowNotes: true,
		}
		if err := diagfmt.Pretty(os.Stdout, result.Bag, result.FileSet, prettyOpts); err != nil {
			return err
		}
	}

	errorCount, warningCount := 0, 0
	for _, d := range result.Bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errorCount++
		case diag.SevWarning:
			warningCount++
		}
	}
	if !quiet && format == "pretty" {
		cached := ""
		if result.FromCache {
			cached = " (cached)"
		}
		fmt.Fprintf(os.Stderr, "%d file(s), %d error(s), %d warning(s)%s\n",
			len(result.Files), errorCount, warningCount, cached)
	}
	if errorCount > 0 {
		return fmt.Errorf("analysis reported %d error(s)", errorCount)
	}
	return nil
}
