package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/switchboard/core/cost"
)

func pricingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pricing",
		Short: "Inspect and override model pricing",
	}
	cmd.AddCommand(
		pricingShowCmd(),
		pricingSetCmd(),
		pricingUnsetCmd(),
		pricingRefreshCmd(),
		pricingImportCmd(),
	)
	return cmd
}

func pricingShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <provider> [model]",
		Short: "Show the resolved price for a model and where it came from",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sw, err := newSwitchboard()
			if err != nil {
				return err
			}
			defer sw.Close()

			def, err := sw.Catalog.FindByID(args[0])
			if err != nil {
				return err
			}
			model := def.DefaultModel
			if len(args) > 1 {
				model = args[1]
			}
			if model == "" {
				return fmt.Errorf("provider %q declares no default model; name one", def.ID)
			}

			resolved := sw.Pricing.Resolve(def, model)
			fmt.Printf("%s/%s\n", def.ID, model)
			fmt.Printf("  input   $%.6f per million tokens\n", resolved.InputPerMillion)
			fmt.Printf("  output  $%.6f per million tokens\n", resolved.OutputPerMillion)
			fmt.Printf("  source  %s\n", resolved.Source)

			if parameters := sw.Pricing.SupportedParameters(def.PricingPrefix() + "/" + model); len(parameters) > 0 {
				fmt.Printf("  supported parameters: %v\n", parameters)
			}
			return nil
		},
	}
}

func pricingSetCmd() *cobra.Command {
	var inputPerMillion, outputPerMillion float64

	cmd := &cobra.Command{
		Use:   "set <provider> <model>",
		Short: "Override the price for a model",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sw, err := newSwitchboard()
			if err != nil {
				return err
			}
			defer sw.Close()

			mc := cost.ModelCost{InputPerMillion: inputPerMillion, OutputPerMillion: outputPerMillion}
			if err := sw.Pricing.SetOverride(args[0], args[1], mc); err != nil {
				return err
			}
			fmt.Printf("override set: %s/%s %s\n", args[0], args[1], mc)
			return nil
		},
	}

	cmd.Flags().Float64Var(&inputPerMillion, "input", 0, "USD per million input tokens")
	cmd.Flags().Float64Var(&outputPerMillion, "output", 0, "USD per million output tokens")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func pricingUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <provider> <model>",
		Short: "Remove a price override",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sw, err := newSwitchboard()
			if err != nil {
				return err
			}
			defer sw.Close()

			if err := sw.Pricing.RemoveOverride(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("override removed: %s/%s\n", args[0], args[1])
			return nil
		},
	}
}

func pricingRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the current OpenRouter pricing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			sw, err := newSwitchboard()
			if err != nil {
				return err
			}
			defer sw.Close()

			if err := sw.Pricing.RefreshOpenRouter(cmd.Context()); err != nil {
				return err
			}
			if age, ok := sw.Pricing.OpenRouterAge(); ok {
				fmt.Printf("pricing table refreshed (age %s)\n", age.Round(time.Second))
			}
			return nil
		},
	}
}

func pricingImportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import -f overrides.yaml",
		Short: "Import price overrides from a YAML file",
		Long: `Import overrides in bulk. The file maps "provider/model" keys to prices:

  openai/gpt-4o:
    input_per_million: 2.5
    output_per_million: 10.0
  anthropic/claude-sonnet-4-5:
    input_per_million: 3.0
    output_per_million: 15.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var overrides map[string]cost.ModelCost
			if err := yaml.Unmarshal(blob, &overrides); err != nil {
				return fmt.Errorf("parsing %s: %w", file, err)
			}

			sw, err := newSwitchboard()
			if err != nil {
				return err
			}
			defer sw.Close()

			imported := 0
			for key, mc := range overrides {
				providerID, model, err := splitOverrideKey(key)
				if err != nil {
					return err
				}
				if err := sw.Pricing.SetOverride(providerID, model, mc); err != nil {
					return err
				}
				imported++
			}
			fmt.Printf("imported %d overrides\n", imported)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML overrides file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
