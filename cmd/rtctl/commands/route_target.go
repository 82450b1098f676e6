package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/rtctl/cmd/rtctl/handlers"
	"github.com/imamik/rtctl/internal/orchestration"
)

// AddRouteTarget returns the add-route-target command.
func AddRouteTarget(g *handlers.Globals) *cobra.Command {
	var req orchestration.RouteTargetRequest

	cmd := &cobra.Command{
		Use:   "add-route-target",
		Short: "Attach a route target to one virtual network",
		Long: `Attach a route target to a routing instance of one virtual network.

The target is created when it does not exist. --direction limits the
association to import or export; omitted, routes flow both ways. Running
it again with another direction updates the existing association.

Example:
  rtctl add-route-target --network default-domain:demo:blue --target 64512:500 --direction import`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.AddRouteTarget(cmd.Context(), *g, req)
		},
	}

	bindRouteTargetFlags(cmd, &req)
	cmd.Flags().StringVar(&req.Direction, "direction", "", "Association direction: import or export (both when omitted)")
	return cmd
}

// RemoveRouteTarget returns the remove-route-target command.
func RemoveRouteTarget(g *handlers.Globals) *cobra.Command {
	var req orchestration.RouteTargetRequest

	cmd := &cobra.Command{
		Use:   "remove-route-target",
		Short: "Detach a route target from one virtual network",
		Long: `Detach a route target from a routing instance of one virtual network and
delete the target once nothing references it.

Example:
  rtctl remove-route-target --network default-domain:demo:blue --target 64512:500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.RemoveRouteTarget(cmd.Context(), *g, req)
		},
	}

	bindRouteTargetFlags(cmd, &req)
	return cmd
}

func bindRouteTargetFlags(cmd *cobra.Command, req *orchestration.RouteTargetRequest) {
	cmd.Flags().StringVar(&req.Network, "network", "", "Virtual network, uuid or fq name (required)")
	cmd.Flags().StringVar(&req.Target, "target", "", "Route target key, e.g. 64512:500 (required)")
	cmd.Flags().StringVar(&req.RoutingInstance, "routing-instance", "", "Named routing instance to use instead of the primary one")
	_ = cmd.MarkFlagRequired("network")
	_ = cmd.MarkFlagRequired("target")
}
