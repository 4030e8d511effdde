package serve

import (
	"fmt"

	"github.com/spf13/cobra"

	"whisper-transcriber/cmd/w2t/cmd/cli"
	"whisper-transcriber/internal/api/routes"
	"whisper-transcriber/internal/api/server"
	"whisper-transcriber/internal/app"
	"whisper-transcriber/web"
)

// NewCmd creates the serve command.
func NewCmd(opts *cli.Options) *cobra.Command {
	var host, port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard and upload API",
		Long: `Start the HTTP server: the dashboard at /, POST /upload, task progress over
server-sent events, /metrics and the API documentation at /swagger/index.html.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(opts, false)
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port != "" {
				cfg.Server.Port = port
			}

			ctx := cmd.Context()
			application, cleanup, err := app.InitializeApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			srv, err := server.NewServer(server.Config{
				Addr:         cfg.Server.Addr(),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				CORSOrigins:  cfg.Server.CORSOrigins,
				Development:  cfg.Log.Development,
			}, &routes.ServiceContainer{
				Pipeline:  application.Pipeline,
				Tasks:     application.Tasks,
				Runtime:   application.Service,
				Metrics:   application.Metrics,
				Dashboard: web.Static(),
				Logger:    application.Logger,
			}, application.Logger)
			if err != nil {
				return err
			}

			cli.Banner(cmd.ErrOrStderr(), application)
			fmt.Fprintf(cmd.ErrOrStderr(), "Dashboard: http://%s/\n", cfg.Server.Addr())
			return srv.Run(ctx, cfg.Server.ShutdownTimeout)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen address (default from config, 127.0.0.1)")
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default from config, 8080)")
	return cmd
}
