package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/tokenstream/pkg/config"
	"github.com/ssargent/tokenstream/pkg/tsapi"
	"github.com/ssargent/tokenstream/pkg/tsstore"
)

var serveConfigPath string

// serveSettings is the resolved port/API key/data directory a serve
// invocation will run with, after merging explicit flags over whatever
// --config supplied.
type serveSettings struct {
	port    int
	apiKey  string
	dataDir string
}

// resolveServeSettings reads port/api-key/data-dir off cmd's flags, then
// fills in anything the caller didn't explicitly set from the YAML config
// at configPath, if given. An explicit flag always wins over the config
// file, matching the teacher's up.go override-from-flags behavior.
func resolveServeSettings(cmd *cobra.Command, configPath string) (serveSettings, error) {
	port, _ := cmd.Flags().GetInt("port")
	apiKey, _ := cmd.Flags().GetString("api-key")
	dataDir, _ := cmd.Flags().GetString("data-dir")

	if configPath == "" {
		return serveSettings{port: port, apiKey: apiKey, dataDir: dataDir}, nil
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return serveSettings{}, err
	}
	if !cmd.Flags().Changed("port") && cfg.Port != 0 {
		port = cfg.Port
	}
	if !cmd.Flags().Changed("api-key") && cfg.Security.ClientAPIKey != "" {
		apiKey = cfg.Security.ClientAPIKey
	}
	if !cmd.Flags().Changed("data-dir") && cfg.DataDir != "" {
		dataDir = cfg.DataDir
	}
	return serveSettings{port: port, apiKey: apiKey, dataDir: dataDir}, nil
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TokenStream record REST API",
	Long: `Start the REST API server exposing manifest records over HTTP,
backed by a Pebble database of TokenStream-encoded records.

A --config YAML file supplies defaults for port, API key, and data
directory; explicit flags always take precedence over it.

Examples:
  tokenstream serve --api-key=mysecretkey --port=8080 --data-dir=./data
  tokenstream serve --config=./tokenstream.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := resolveServeSettings(cmd, serveConfigPath)
		if err != nil {
			cmd.Printf("Error loading config: %v\n", err)
			return
		}

		if settings.apiKey == "" {
			cmd.Println("Error: --api-key is required (or set security.client_api_key in --config)")
			return
		}

		store, err := tsstore.NewManifestStore(settings.dataDir)
		if err != nil {
			cmd.Printf("Error opening manifest store: %v\n", err)
			return
		}
		defer store.Close()

		serverConfig := tsapi.ServerConfig{
			Port:   settings.port,
			APIKey: settings.apiKey,
		}

		if err := tsapi.StartServer(store, serverConfig); err != nil {
			cmd.Printf("Error starting server: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("api-key", "", "API key for record endpoint authentication (required unless set via --config)")
	serveCmd.Flags().StringP("data-dir", "d", "./data", "Directory for the Pebble-backed manifest store")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a YAML config file (see pkg/config.Config)")
}
