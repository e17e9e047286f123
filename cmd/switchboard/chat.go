package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/switchboard/core/chat"
)

func chatCmd() *cobra.Command {
	var (
		provider    string
		model       string
		system      string
		stream      bool
		jsonOut     bool
		estimate    bool
		temperature float64
		maxTokens   int
		webSearch   bool
	)

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Send a chat completion",
		Long: `Send a prompt to a provider and print the completion. The prompt comes from
the arguments, or from stdin when piped:

  switchboard chat "explain CIDR notation"
  git diff | switchboard chat -p anthropic "review this diff"

With --stream, fragments print as they arrive. With --json, the full
normalized response (usage, cost, citations) prints as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args)
			if err != nil {
				return err
			}

			sw, err := newSwitchboard()
			if err != nil {
				return err
			}
			defer sw.Close()

			request := &chat.Request{Model: model, WebSearch: webSearch}
			if system != "" {
				request.Messages = append(request.Messages, chat.System(system))
			}
			request.Messages = append(request.Messages, chat.User(prompt))

			params := &chat.Params{}
			if cmd.Flags().Changed("temperature") {
				params.Temperature = &temperature
			}
			if maxTokens > 0 {
				params.MaxTokens = &maxTokens
			}
			if params.Temperature != nil || params.MaxTokens != nil {
				request.Params = params
			}

			providerID := provider
			if providerID == "" {
				providerID = sw.Config.DefaultProvider
			}

			if estimate {
				projection, err := sw.Client.EstimateCost(providerID, request)
				if err != nil {
					return err
				}
				return printJSON(projection)
			}

			if stream {
				s, err := sw.Stream(cmd.Context(), providerID, request)
				if err != nil {
					return err
				}
				for fragment, err := range s.Iter() {
					if err != nil {
						fmt.Println()
						return err
					}
					fmt.Print(fragment.Text)
					if fragment.Done {
						break
					}
				}
				fmt.Println()
				return nil
			}

			response, err := sw.Complete(cmd.Context(), providerID, request)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(response)
			}
			if !response.OK() {
				return fmt.Errorf("%s: %s", response.Provider, response.ErrorMessage)
			}

			fmt.Println(response.Text)
			printExchangeSummary(response)
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "provider id (default: configured default)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "model id (default: provider's default)")
	cmd.Flags().StringVar(&system, "system", "", "system prompt")
	cmd.Flags().BoolVar(&stream, "stream", false, "stream fragments as they arrive")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the full response as JSON")
	cmd.Flags().BoolVar(&estimate, "estimate", false, "project the cost without sending")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 0, "sampling temperature")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "maximum output tokens")
	cmd.Flags().BoolVar(&webSearch, "web-search", false, "enable provider-side web search")

	return cmd
}

// readPrompt joins the arguments and appends piped stdin, so
// `git diff | switchboard chat "review this"` sends both.
func readPrompt(args []string) (string, error) {
	prompt := strings.Join(args, " ")

	if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
		piped, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading prompt from stdin: %w", err)
		}
		if text := strings.TrimSpace(string(piped)); text != "" {
			if prompt != "" {
				prompt += "\n\n"
			}
			prompt += text
		}
	}

	if prompt == "" {
		return "", fmt.Errorf("no prompt: pass it as an argument or pipe it on stdin")
	}
	return prompt, nil
}

// printExchangeSummary writes the accounting line to stderr so piped stdout
// stays clean completion text.
func printExchangeSummary(response *chat.Response) {
	if response.Usage == nil {
		return
	}
	summary := fmt.Sprintf("%s/%s  %d in / %d out", response.Provider, response.Model,
		response.Usage.InputTokens, response.Usage.OutputTokens)
	if response.Cost != nil {
		summary += fmt.Sprintf("  $%.6f (%s)", *response.Cost, response.CostSource)
	}
	fmt.Fprintln(os.Stderr, summary)
}
