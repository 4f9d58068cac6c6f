package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-resourceforms/pkg/render"
)

const (
	pageForm   = "form"
	pageMatrix = "matrix"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		output   string
		format   string
		fragment bool
	)

	cmd := &cobra.Command{
		Use:       "render form|matrix",
		Short:     "Render a page once and write it to stdout or a file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{pageForm, pageMatrix},
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.render(cmd.Context(), args[0], format, !fragment)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s page written to %s\n", args[0], output)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	flags.StringVarP(&format, "format", "f", "", "renderer name (vanilla, json)")
	flags.BoolVar(&fragment, "fragment", false, "render the page without the document wrapper")
	return cmd
}

func (a *app) render(ctx context.Context, page, format string, standalone bool) ([]byte, error) {
	registry, _, err := a.renderers()
	if err != nil {
		return nil, err
	}
	renderer, err := registry.Resolve(format)
	if err != nil {
		return nil, err
	}
	options, err := a.renderOptions(standalone)
	if err != nil {
		return nil, err
	}

	client, err := a.client()
	if err != nil {
		return nil, err
	}

	switch page {
	case pageForm:
		fetcher, err := a.fetcher(ctx, client)
		if err != nil {
			return nil, err
		}
		formPage, err := a.formPage(fetcher)
		if err != nil {
			return nil, err
		}
		if _, err := formPage.Mount(ctx); err != nil {
			return nil, err
		}
		return formPage.Render(ctx, renderer, options)
	case pageMatrix:
		matrixPage, err := a.matrixPage(client)
		if err != nil {
			return nil, err
		}
		if err := matrixPage.Mount(ctx); err != nil {
			return nil, err
		}
		return matrixPage.Render(ctx, renderer, options)
	default:
		return nil, fmt.Errorf("unknown page %q, want %s or %s", page, render.PageForm, render.PageMatrix)
	}
}
