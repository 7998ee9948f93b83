package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/postage-service/internal/adapters/http/dto"
)

func newQuoteCmd(opts *globalOptions) *cobra.Command {
	var (
		module     string
		country    string
		state      string
		locale     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "quote <cart.yaml>",
		Short: "Quote the postage of a cart file",
		Long:  "Quote a cart with one delivery module, or with every enabled module when --module is omitted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := readCartFile(args[0])
			if err != nil {
				return err
			}

			req := file.request(module)
			if country != "" {
				req.Address = nil
				req.Country = country
				req.State = state
			}

			if err := dto.Validate(req); err != nil {
				return validationError(err)
			}

			service, cfg, err := opts.newService(cmd)
			if err != nil {
				return err
			}

			if locale == "" {
				locale = cfg.App.Locale
			}

			in := req.ToInput(module, locale)
			out := cmd.OutOrStdout()

			if module != "" {
				quote, err := service.Quote(cmd.Context(), in)
				if err != nil {
					return errors.New(failureMessage(err))
				}

				resp := dto.ToQuoteResponse(quote)
				if jsonOutput {
					return writeJSON(out, resp)
				}

				fmt.Fprint(out, renderQuote(resp))

				return nil
			}

			results, err := service.QuoteAll(cmd.Context(), in)
			if err != nil {
				return errors.New(failureMessage(err))
			}

			resp := dto.ToQuoteAllResponse(results)
			if jsonOutput {
				return writeJSON(out, resp)
			}

			fmt.Fprint(out, renderQuoteAll(resp))

			return nil
		},
	}

	cmd.Flags().StringVarP(&module, "module", "m", "", "Delivery module code; all modules when empty")
	cmd.Flags().StringVarP(&country, "country", "c", "", "Override the destination with a country code")
	cmd.Flags().StringVarP(&state, "state", "s", "", "State code used with --country")
	cmd.Flags().StringVarP(&locale, "locale", "l", "", "Language of error messages")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// failureMessage renders err the way the HTTP API would report it.
func failureMessage(err error) string {
	_, resp := dto.MapDomainError(err)
	return fmt.Sprintf("%s: %s", resp.Error.Code, resp.Error.Message)
}

func validationError(err error) error {
	fields := dto.ValidationErrors(err)
	if len(fields) == 0 {
		return err
	}

	lines := make([]string, 0, len(fields))
	for _, field := range sortedKeys(fields) {
		lines = append(lines, fmt.Sprintf("  %s: %s", field, fields[field]))
	}

	return fmt.Errorf("invalid cart file:\n%s", strings.Join(lines, "\n"))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
