package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/compose"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <template.json>",
		Short: "Check a template and list its placeholders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read template: %w", err)
			}
			def, err := compose.ParseDefinition(raw)
			if err != nil {
				return err
			}
			return report(cmd, def)
		},
	}
}

// report prints one line per element and fails if any element would
// abort a render.
func report(cmd *cobra.Command, def *compose.Definition) error {
	w := cmd.OutOrStdout()
	invalid := 0
	for i, el := range def.Elements {
		switch e := el.(type) {
		case compose.ImageElement:
			fmt.Fprintf(w, "%3d  image      %-16s %s\n", i, e.Name, e.Source)
		case compose.RectangleElement:
			fmt.Fprintf(w, "%3d  rectangle  %-16s %s\n", i, e.Name, e.Color)
		case compose.TextElement:
			fmt.Fprintf(w, "%3d  text       %-16s %q\n", i, e.Name, e.Text)
		case compose.UnknownElement:
			fmt.Fprintf(w, "%3d  %-10s (skipped)\n", i, e.Type)
		case compose.InvalidElement:
			invalid++
			fmt.Fprintf(w, "%3d  %-10s INVALID: %v\n", i, e.Type, e.Err)
		}
	}
	if tokens := compose.DefinitionTokens(def); len(tokens) > 0 {
		fmt.Fprintf(w, "placeholders: %s\n", strings.Join(tokens, ", "))
	}
	if invalid > 0 {
		return fmt.Errorf("%w: %d invalid element(s)", compose.ErrElementShape, invalid)
	}
	fmt.Fprintln(w, "template is valid")
	return nil
}
