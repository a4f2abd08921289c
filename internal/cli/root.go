package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/driftcheck/driftcheck/internal/observability"
	"github.com/driftcheck/driftcheck/internal/observability/logging"
	otelobs "github.com/driftcheck/driftcheck/internal/observability/otel"
	"github.com/driftcheck/driftcheck/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "driftcheck",
	Short: "Policy drift detection for system configurations",
	Long: `driftcheck compares an observed configuration snapshot against a
declared security policy and reports every deviation.`,
	Version:           version.BuildVersion(),
	PersistentPreRunE: setupObservability,
	PersistentPostRun: teardownObservability,
}

var (
	logLevelFlag  string
	logFormatFlag string
	logOutputFlag string

	otelFlag            bool
	otelEndpointFlag    string
	otelProtocolFlag    string
	otelInsecureFlag    bool
	otelSampleRatioFlag float64

	activeLogger logging.Logger
	otelHandle   *otelobs.Handle
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevelFlag, "log-level", logging.LevelInfo, "Log level: debug, info, warn, or error")
	pf.StringVar(&logFormatFlag, "log-format", "text", "Log format: text or jsonl")
	pf.StringVar(&logOutputFlag, "log-output", "stderr", "Log destination: stderr or a file path")
	pf.BoolVar(&otelFlag, "otel", false, "Enable OpenTelemetry trace export")
	pf.StringVar(&otelEndpointFlag, "otel-endpoint", "", "OTLP endpoint (protocol-appropriate default when empty)")
	pf.StringVar(&otelProtocolFlag, "otel-protocol", otelobs.ProtocolHTTP, "OTLP protocol: otlphttp or otlpgrpc")
	pf.BoolVar(&otelInsecureFlag, "otel-insecure", false, "Allow insecure OTLP connections")
	pf.Float64Var(&otelSampleRatioFlag, "otel-sample-ratio", 1.0, "Trace sampling ratio (0..1)")

	rootCmd.AddCommand(GetCheckCmd())
	rootCmd.AddCommand(GetDiffCmd())
	rootCmd.AddCommand(GetPolicyCmd())
}

func setupObservability(cmd *cobra.Command, args []string) error {
	ctx := observability.WithOpID(cmd.Context())

	log, err := logging.NewLogger(logging.Config{
		Format: logFormatFlag,
		Level:  logLevelFlag,
		Output: logOutputFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	activeLogger = log
	ctx = logging.WithLogger(ctx, log)

	if otelFlag {
		cfg := otelobs.DefaultConfig()
		cfg.Enabled = true
		cfg.Endpoint = otelEndpointFlag
		cfg.Protocol = otelProtocolFlag
		cfg.Insecure = otelInsecureFlag
		cfg.SampleRatio = otelSampleRatioFlag

		h, err := otelobs.Init(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		otelHandle = h
		ctx = otelobs.WithHandle(ctx, h)
	}

	cmd.SetContext(ctx)
	return nil
}

func teardownObservability(cmd *cobra.Command, args []string) {
	if otelHandle != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otelHandle.Shutdown(ctx)
	}
	if activeLogger != nil {
		_ = activeLogger.Close()
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
