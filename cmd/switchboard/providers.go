package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/switchboard/providers/catalog"
)

func providersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Manage provider definitions",
	}
	cmd.AddCommand(
		providersListCmd(),
		providersShowCmd(),
		providersAddCmd(),
		providersRemoveCmd(),
	)
	return cmd
}

func providersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			sw, err := newSwitchboard()
			if err != nil {
				return err
			}
			defer sw.Close()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDIALECT\tDEFAULT MODEL\tBASE URL")
			for _, def := range sw.Catalog.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", def.ID, def.Dialect, def.DefaultModel, def.BaseURL)
			}
			return w.Flush()
		},
	}
}

func providersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one provider definition as YAML",
		Args:  cobra.ExactArgs(1),
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

			out, err := yaml.Marshal(def)
			if err != nil {
				return fmt.Errorf("marshaling definition: %w", err)
			}
			fmt.Print(string(out))
			return nil
		},
	}
}

func providersAddCmd() *cobra.Command {
	var file string
	var update bool

	cmd := &cobra.Command{
		Use:   "add -f definition.yaml",
		Short: "Add a provider from a YAML definition file",
		Long: `Add a provider definition. The file uses the same field names as
'providers show' prints:

  id: my-gateway
  name: My Gateway
  base_url: https://llm.internal.example.com
  chat_path: /v1/chat/completions
  models_path: /v1/models
  dialect: OPENAI_COMPATIBLE
  default_model: gw-large`,
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var def catalog.ProviderDefinition
			if err := yaml.Unmarshal(blob, &def); err != nil {
				return fmt.Errorf("parsing %s: %w", file, err)
			}

			sw, err := newSwitchboard()
			if err != nil {
				return err
			}
			defer sw.Close()

			if update {
				if err := sw.Catalog.Update(def); err != nil {
					return err
				}
				fmt.Printf("updated provider %q\n", def.ID)
				return nil
			}
			if err := sw.Catalog.Add(def); err != nil {
				return err
			}
			fmt.Printf("added provider %q\n", def.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML definition file")
	cmd.Flags().BoolVar(&update, "update", false, "replace an existing definition with the same id")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func providersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a provider definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sw, err := newSwitchboard()
			if err != nil {
				return err
			}
			defer sw.Close()

			if err := sw.Catalog.Remove(args[0]); err != nil {
				return err
			}
			fmt.Printf("removed provider %q\n", args[0])
			return nil
		},
	}
}
