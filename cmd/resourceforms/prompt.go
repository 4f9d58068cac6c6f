package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-resourceforms/pkg/renderers/tui"
	"github.com/goliatone/go-resourceforms/pkg/resource"
)

func newPromptCmd(a *app) *cobra.Command {
	var (
		format string
		submit bool
	)

	cmd := &cobra.Command{
		Use:   "prompt <type>",
		Short: "Enter a record interactively using the type's schema",
		Long: `prompt asks for every writable field of the resource type and prints the
answers. With --submit the record is posted to the API and the stored row is
printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := resource.Parse(args[0])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			fetcher, err := a.fetcher(cmd.Context(), client)
			if err != nil {
				return err
			}
			s, err := fetcher.Schema(cmd.Context(), typ)
			if err != nil {
				return err
			}

			prompter := tui.New(
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.ErrOrStderr())),
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithWidgets(a.cfg.WidgetRegistry()),
			)
			record, err := prompter.Collect(cmd.Context(), "New "+typ.Title(), s, nil)
			if err != nil {
				return err
			}
			if submit {
				record, err = client.Create(cmd.Context(), typ, record)
				if err != nil {
					return err
				}
			}

			out, err := prompter.Encode(record)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&format, "format", "f", string(tui.OutputFormatJSON), "output format (json, form, pretty)")
	flags.BoolVar(&submit, "submit", false, "post the record to the API")
	return cmd
}
