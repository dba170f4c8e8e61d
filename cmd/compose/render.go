package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/compose"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template to a PNG file",
		Long: `Renders a template once. Without --template the stored template is used.
Data comes from a JSON object file (--data) and individual --set key=value pairs,
which take precedence.`,
		Example: `  compose render --template card.json --set username=ada -o card.png
  compose render --data request.json -o - > card.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			def, err := renderTemplate(cmd, a)
			if err != nil {
				return err
			}
			data, err := renderData(cmd)
			if err != nil {
				return err
			}
			renderer, err := a.renderer(a.loader())
			if err != nil {
				return err
			}
			out, err := renderer.Render(ctx, def, data)
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("output")
			if path == "-" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(path, out, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			a.logger.Info("image written", "path", path, "bytes", len(out))
			return nil
		},
	}
	cmd.Flags().StringP("template", "t", "", "Template JSON file; defaults to the stored template")
	cmd.Flags().StringP("data", "d", "", "JSON object file with placeholder values")
	cmd.Flags().StringToString("set", nil, "Placeholder value as key=value (repeatable)")
	cmd.Flags().StringP("output", "o", "out.png", "Output PNG path, or - for stdout")
	return cmd
}

func renderTemplate(cmd *cobra.Command, a *app) (*compose.Definition, error) {
	path, _ := cmd.Flags().GetString("template")
	if path == "" {
		st, release, err := a.store(cmd.Context())
		if err != nil {
			return nil, err
		}
		defer func() { _ = release() }()
		return st.Get(cmd.Context())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return compose.ParseDefinition(raw)
}

func renderData(cmd *cobra.Command) (compose.Data, error) {
	data := compose.Data{}
	if path, _ := cmd.Flags().GetString("data"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read data: %w", err)
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to parse data %s: %w", path, err)
		}
		if data == nil {
			data = compose.Data{}
		}
	}
	set, _ := cmd.Flags().GetStringToString("set")
	for k, v := range set {
		data[k] = v
	}
	return data, nil
}
