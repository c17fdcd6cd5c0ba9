package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hostrender/internal/errors"
)

func codesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "codes [code...]",
		Short: "List registered error codes",
		Long: `List the error codes hostrender reports, with their category and
message. Pass codes to show only those.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCodes(cmd.OutOrStdout(), args, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per line")

	return cmd
}

func printCodes(w io.Writer, codes []string, asJSON bool) error {
	if len(codes) == 0 {
		codes = errors.GetAllCodes()
	}
	for _, code := range codes {
		code = strings.ToUpper(code)
		tmpl, ok := errors.GetTemplate(code)
		if !ok {
			return errors.Newf(errors.CategoryCLI, "unknown error code %q", code).
				WithSuggestion("run hostrender codes to list every code")
		}
		if asJSON {
			fmt.Fprintln(w, errors.New(code).FormatJSON())
			continue
		}
		fmt.Fprintf(w, "%s  %-9s %s\n", code, tmpl.Category, tmpl.Message)
	}
	return nil
}
