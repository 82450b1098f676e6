// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/rtctl/cmd/rtctl/handlers"
)

// Root returns the root command for the rtctl CLI.
//
// Connection and output settings are persistent flags shared by every
// subcommand. Unset flags fall back to the config file and RTCTL_*
// environment variables.
func Root() *cobra.Command {
	g := &handlers.Globals{}

	cmd := &cobra.Command{
		Use:   "rtctl",
		Short: "Manage route-target connectivity between virtual networks",
		Long: `rtctl connects and disconnects virtual networks in an OpenContrail
config store by sharing route targets between their routing instances.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&g.ConfigPath, "config", "c", "", "Path to configuration file")
	f.StringVarP(&g.Username, "username", "U", "", "API username")
	f.StringVarP(&g.Password, "password", "P", "", "API password")
	f.StringVarP(&g.AuthToken, "auth-token", "a", "", "API auth token (takes precedence over username/password)")
	f.StringVarP(&g.APIServer, "api-server", "s", "", "API server address (default 127.0.0.1)")
	f.IntVarP(&g.APIPort, "api-port", "p", 0, "API server port (default 8082)")
	f.StringVarP(&g.TenantID, "tenant-id", "t", "", "Tenant (project) uuid")
	f.StringVarP(&g.Output, "output", "o", "", "Output format: text or json (default text)")
	f.StringVar(&g.MetricsTextfile, "metrics-textfile", "", "Write store and operation metrics to this file on exit")
	f.BoolVarP(&g.Verbose, "verbose", "v", false, "Enable debug logging")

	// Inspection
	cmd.AddCommand(List(g))
	cmd.AddCommand(Show(g))

	// Connectivity
	cmd.AddCommand(EnableRouting(g))
	cmd.AddCommand(DisableRouting(g))
	cmd.AddCommand(AddRouteTarget(g))
	cmd.AddCommand(RemoveRouteTarget(g))

	cmd.AddCommand(Version())

	return cmd
}
