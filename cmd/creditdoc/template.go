package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"creditdoc/internal/docx"
)

var errInvalidTemplate = errors.New("template is not valid")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <template.docx>...",
		Short: "Check that templates are structurally sound .docx files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), args)
		},
	}
}

func runValidate(w io.Writer, paths []string) error {
	failed := 0
	for _, p := range paths {
		buf, err := os.ReadFile(p)
		if err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", p, err)
			failed++
			continue
		}
		if res := docx.Validate(buf); !res.Valid {
			fmt.Fprintf(w, "FAIL %s: %s\n", p, res.Error)
			failed++
			continue
		}
		fmt.Fprintf(w, "ok   %s\n", p)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d failed", errInvalidTemplate, failed, len(paths))
	}
	return nil
}

type renderOptions struct {
	dataPath string
	outPath  string
}

func newRenderCmd() *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render <template.docx>",
		Short: "Render a template with values from a YAML file",
		Long: `Renders a template offline. The data file has a "fields" map for flat tags such as
{customer_name} and a "groups" map for dotted tags such as {customer.full_name}.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.dataPath, "data", "", "YAML file with fields and groups")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "output .docx path")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runRender(w io.Writer, templatePath string, opts renderOptions) error {
	tpl, err := os.ReadFile(templatePath)
	if err != nil {
		return err
	}
	if res := docx.Validate(tpl); !res.Valid {
		return fmt.Errorf("%w: %s", errInvalidTemplate, res.Error)
	}

	var data docx.Data
	if opts.dataPath != "" {
		raw, err := os.ReadFile(opts.dataPath)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parse %s: %w", opts.dataPath, err)
		}
	}

	out, err := docx.Render(tpl, data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.outPath, out, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s (%d bytes)\n", opts.outPath, len(out))
	return nil
}
