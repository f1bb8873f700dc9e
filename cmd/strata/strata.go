// Package stratacmder
package stratacmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/quarrylabs/strata/cmd/strata/config"
	servecmder "github.com/quarrylabs/strata/cmd/strata/serve"
	versioncmder "github.com/quarrylabs/strata/cmd/version"
)

const strataLongDesc string = `Strata is an MCP tool server for document search and semantic retrieval.

It exposes document CRUD, full-text search, and vector similarity search
over an index service, backed by a remote embedding provider.

Run the server using:
  strata serve         Run the MCP and API servers together`

const strataShortDesc string = "Strata - Search & Retrieval MCP Server"

func NewStrataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strata",
		Short: strataShortDesc,
		Long:  strataLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .strata/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
