package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/rtctl/cmd/rtctl/handlers"
	"github.com/imamik/rtctl/internal/orchestration"
)

// EnableRouting returns the enable-routing command.
//
// It attaches one route target to both networks so their routes leak
// into each other. Without --target a fresh key is derived from the left
// network's existing targets.
func EnableRouting(g *handlers.Globals) *cobra.Command {
	var req orchestration.RoutingRequest

	cmd := &cobra.Command{
		Use:   "enable-routing",
		Short: "Connect two virtual networks through a shared route target",
		Long: `Enable routing between two virtual networks by attaching the same
route target to a routing instance of each.

Steps:
  1. Resolve both networks (uuid or fully qualified name)
  2. Find or create the route target; without --target a key is derived
     from the left network's primary instance
  3. Link the left routing instance, then the right one

Re-running the command after a failure resumes where it stopped; steps
already done are reported as already-linked.

Examples:
  rtctl enable-routing --left-network default-domain:demo:blue --right-network default-domain:demo:red
  rtctl enable-routing --left-network blue-uuid --right-network red-uuid --target 64512:500 --routing-instance peering`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.EnableRouting(cmd.Context(), *g, req)
		},
	}

	bindRoutingFlags(cmd, &req)
	cmd.Flags().StringVar(&req.Target, "target", "", "Route target key, e.g. 64512:500 (derived when omitted)")
	return cmd
}

// DisableRouting returns the disable-routing command.
func DisableRouting(g *handlers.Globals) *cobra.Command {
	var req orchestration.RoutingRequest

	cmd := &cobra.Command{
		Use:   "disable-routing",
		Short: "Disconnect two virtual networks",
		Long: `Disable routing between two virtual networks by detaching their shared
route target from both sides.

Without --target the first route target present on both networks is used.
Named routing instances left without targets are deleted, primary
instances never are. The route target itself is deleted once nothing
references it; a target still in use elsewhere is reported as a warning.

Example:
  rtctl disable-routing --left-network default-domain:demo:blue --right-network default-domain:demo:red`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.DisableRouting(cmd.Context(), *g, req)
		},
	}

	bindRoutingFlags(cmd, &req)
	cmd.Flags().StringVar(&req.Target, "target", "", "Route target key (common target of both networks when omitted)")
	return cmd
}

func bindRoutingFlags(cmd *cobra.Command, req *orchestration.RoutingRequest) {
	cmd.Flags().StringVar(&req.Left, "left-network", "", "Left virtual network, uuid or fq name (required)")
	cmd.Flags().StringVar(&req.Right, "right-network", "", "Right virtual network, uuid or fq name (required)")
	cmd.Flags().StringVar(&req.RoutingInstance, "routing-instance", "", "Named routing instance to use instead of the primary one")
	_ = cmd.MarkFlagRequired("left-network")
	_ = cmd.MarkFlagRequired("right-network")
}
