package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFontsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fonts",
		Short: "List the registered font families",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			reg, err := a.fonts()
			if err != nil {
				return err
			}
			def := reg.Default()
			for _, family := range reg.Families() {
				marker := " "
				if family == def {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, family)
			}
			return nil
		},
	}
}
