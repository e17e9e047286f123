package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models [provider]",
		Short: "List a provider's models",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sw, err := newSwitchboard()
			if err != nil {
				return err
			}
			defer sw.Close()

			providerID := sw.Config.DefaultProvider
			if len(args) > 0 {
				providerID = args[0]
			}

			models, err := sw.Client.Models(cmd.Context(), providerID)
			if err != nil {
				return err
			}
			for _, model := range models {
				fmt.Println(model)
			}
			return nil
		},
	}
}
