package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/rtctl/cmd/rtctl/handlers"
)

// List returns the list command.
func List(g *handlers.Globals) *cobra.Command {
	var opts handlers.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List virtual networks with their routing instances and route targets",
		Long: `List prints virtual networks together with their subnets, routing
instances and the route targets attached to each instance.

Without filters all networks of the configured tenant are listed.

Examples:
  rtctl list
  rtctl list --target 64512:10001
  rtctl list --routing-instance default-domain:demo:blue:blue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.List(cmd.Context(), *g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", "", "Only networks whose instances reference this route target")
	cmd.Flags().StringVar(&opts.RoutingInstance, "routing-instance", "", "Only the network owning this routing instance")
	cmd.Flags().StringVar(&opts.TenantID, "tenant-id", "", "Tenant uuid to list (overrides the global setting)")
	cmd.MarkFlagsMutuallyExclusive("target", "routing-instance")

	return cmd
}

// Show returns the show command.
func Show(g *handlers.Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show <network>",
		Short: "Show one virtual network",
		Long: `Show prints a single virtual network, addressed by uuid or by its
colon-separated fully qualified name.

Example:
  rtctl show default-domain:demo:blue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Show(cmd.Context(), *g, args[0])
		},
	}
}
