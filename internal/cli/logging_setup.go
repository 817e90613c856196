package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/sequestra/internal/logging"
)

// setupLogging configures logging from the loaded config and the --debug flag,
// and attaches the logger and a trace id to the command context.
func setupLogging(cmd *cobra.Command) logging.LogPathResult {
	loggingCfg := configFrom(cmd).cfg.Logging

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = "console"
		loggingCfg.File = ""
	}

	result := logging.NewLoggerWithPath(loggingCfg.ToLoggingConfig())
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := os.Getenv(logging.EnvTraceID)
	if traceID == "" {
		traceID = logging.GetOrGenerateTraceID(ctx)
	}
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = result.Logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str("command", cmd.Name()).Str("trace_id", traceID).Msg("command started")

	return result
}

// cleanupLogging closes the log file handle.
func cleanupLogging(logResult *logging.LogPathResult) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
