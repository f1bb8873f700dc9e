// Package servecmder provides the serve command for running the strata servers.
package servecmder

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/quarrylabs/strata/api"
	"github.com/quarrylabs/strata/api/mcp"
	"github.com/quarrylabs/strata/pkg/cliui"
	"github.com/quarrylabs/strata/pkg/config"
	embeddingutils "github.com/quarrylabs/strata/pkg/embeddings/utils"
	"github.com/quarrylabs/strata/pkg/index/opensearch"
	"github.com/quarrylabs/strata/pkg/knowledge"
	"github.com/quarrylabs/strata/pkg/logger"
)

const serveLongDesc string = `Run the strata servers.

Starts the MCP server and the operational API server together. The MCP
server speaks streamable HTTP and exposes the document and embedding
tools; the API server exposes health, cluster, and search endpoints and
also mounts the MCP handler at /mcp.

Connection settings come from config.toml in the .strata/ directory,
STRATA_* environment variables, or the flags below (flags win).`

const serveShortDesc string = "Run the strata MCP and API servers"

// serveFlags is the registry of flags the serve command binds into viper.
var serveFlags = config.FlagSet{
	config.FlagIndexHost: {
		Name: "index-host", ViperKey: "index.host",
		Description: "Index service host",
	},
	config.FlagIndexPort: {
		Name: "index-port", ViperKey: "index.port",
		Description: "Index service port",
	},
	config.FlagIndexName: {
		Name: "index-name", ViperKey: "index.name",
		Description: "Name of the index to operate on",
	},
	config.FlagIndexUsername: {
		Name: "index-username", ViperKey: "index.username",
		Description: "Username for index service basic auth",
	},
	config.FlagIndexTLS: {
		Name: "index-tls", ViperKey: "index.use_tls",
		Description: "Connect to the index service over TLS",
	},
	config.FlagEmbeddingProv: {
		Name: "embedding-provider", ViperKey: "embedding.provider",
		Description: "Embedding provider (siliconflow, ollama)",
	},
	config.FlagEmbeddingTgt: {
		Name: "embedding-endpoint", ViperKey: "embedding.endpoint",
		Description: "Embedding provider endpoint URL",
	},
	config.FlagEmbeddingModel: {
		Name: "embedding-model", ViperKey: "embedding.model",
		Description: "Embedding model name",
	},
	config.FlagEmbeddingDims: {
		Name: "embedding-dimensions", ViperKey: "embedding.dimensions",
		Description: "Expected embedding vector dimension",
	},
	config.FlagMCPListen: {
		Name: "mcp-listen", Shorthand: "m", ViperKey: "mcp.listen",
		Description: "Address for the MCP server to listen on",
	},
	config.FlagAPIListen: {
		Name: "api-listen", Shorthand: "a", ViperKey: "api.listen",
		Description: "Address for the API server to listen on",
	},
}

// serveFlagKeys lists the registry keys bound in PreRunE, in registration order.
var serveFlagKeys = []string{
	config.FlagIndexHost,
	config.FlagIndexPort,
	config.FlagIndexName,
	config.FlagIndexUsername,
	config.FlagIndexTLS,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagMCPListen,
	config.FlagAPIListen,
}

type ServeCommander struct {
	debug  bool
	viper  *viper.Viper
	logger *zap.Logger

	flagIndexHost   string
	flagIndexPort   int
	flagIndexName   string
	flagIndexUser   string
	flagIndexTLS    bool
	flagEmbProv     string
	flagEmbEndpoint string
	flagEmbModel    string
	flagEmbDims     uint
	flagMCPListen   string
	flagAPIListen   string
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, err := cmd.Flags().GetString("config-dir")
			if err != nil {
				return fmt.Errorf("could not get config-dir flag: %w", err)
			}

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)
			cmder.viper = v

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagIndexHost, &cmder.flagIndexHost)
	config.AddIntFlag(cmd, serveFlags, config.FlagIndexPort, &cmder.flagIndexPort)
	config.AddStringFlag(cmd, serveFlags, config.FlagIndexName, &cmder.flagIndexName)
	config.AddStringFlag(cmd, serveFlags, config.FlagIndexUsername, &cmder.flagIndexUser)
	config.AddBoolFlag(cmd, serveFlags, config.FlagIndexTLS, &cmder.flagIndexTLS)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingProv, &cmder.flagEmbProv)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingTgt, &cmder.flagEmbEndpoint)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingModel, &cmder.flagEmbModel)
	config.AddUintFlag(cmd, serveFlags, config.FlagEmbeddingDims, &cmder.flagEmbDims)
	config.AddStringFlag(cmd, serveFlags, config.FlagMCPListen, &cmder.flagMCPListen)
	config.AddStringFlag(cmd, serveFlags, config.FlagAPIListen, &cmder.flagAPIListen)

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v := c.viper

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: v.GetString("embedding.provider"),
		TargetURL:    v.GetString("embedding.endpoint"),
		Token:        v.GetString("embedding.token"),
		Model:        v.GetString("embedding.model"),
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	client, err := opensearch.NewClient(opensearch.Config{
		Host:      v.GetString("index.host"),
		Port:      v.GetInt("index.port"),
		IndexName: v.GetString("index.name"),
		Username:  v.GetString("index.username"),
		Password:  v.GetString("index.password"),
		UseTLS:    v.GetBool("index.use_tls"),
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating index client: %w", err)
	}
	defer client.Close()

	// Probe the index service up front; a failure is worth surfacing but
	// should not prevent startup while the index is still coming up.
	if err := cliui.Step(os.Stdout, "connecting to index service", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := client.Health(ctx)
		return err
	}); err != nil {
		c.logger.Warn("index service unreachable at startup", zap.Error(err))
	}

	service, err := knowledge.NewService(embedder, client, knowledge.Params{
		VectorField: v.GetString("embedding.vector_field"),
		Dimensions:  v.GetInt("embedding.dimensions"),
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating knowledge service: %w", err)
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Service: service,
		Logger:  c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiConfig := api.Config{
		ListenAddr: v.GetString("api.listen"),
	}
	apiServer, err := api.NewServer(apiConfig, service, mcpServer.Handler(), c.logger)
	if err != nil {
		return fmt.Errorf("creating api server: %w", err)
	}
	defer func() { _ = apiServer.Shutdown() }()

	mcpListen := v.GetString("mcp.listen")
	mcpHTTP := &http.Server{
		Addr:    mcpListen,
		Handler: mcpServer.Handler(),
	}
	defer func() { _ = mcpHTTP.Close() }()

	c.logger.Info("starting MCP server",
		zap.String("listen", mcpListen),
		zap.String("index", v.GetString("index.name")),
		zap.String("embedding_model", v.GetString("embedding.model")),
	)

	errChan := make(chan error, 2)

	go func() {
		if err := mcpHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return nil
	}
}
