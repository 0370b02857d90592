package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"uscript/internal/diagfmt"
	"uscript/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:          "tokenize [flags] file.uc",
	Short:        "Tokenize a script file",
	Long:         `Tokenize breaks a script file into its constituent tokens`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	tokens, bag, fileSet, err := driver.Tokenize(args[0], maxDiagnostics(cmd))
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	if bag.Len() > 0 {
		opts := diagfmt.PrettyOpts{Color: colorEnabled(cmd, os.Stderr)}
		if err := diagfmt.Pretty(os.Stderr, bag, fileSet, opts); err != nil {
			return err
		}
	}

	switch format {
	case "pretty":
		return diagfmt.FormatTokensPretty(os.Stdout, tokens, fileSet)
	case "json":
		return diagfmt.FormatTokensJSON(os.Stdout, tokens)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
