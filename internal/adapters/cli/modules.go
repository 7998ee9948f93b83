package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/postage-service/internal/adapters/http/dto"
)

func newModulesCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List the delivery modules enabled by the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, _, err := opts.newService(cmd)
			if err != nil {
				return err
			}

			resp := dto.ToModulesResponse(service.Modules())
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			fmt.Fprint(cmd.OutOrStdout(), renderModules(resp))

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
