package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"whisper-transcriber/cmd/w2t/cmd/cli"
	"whisper-transcriber/cmd/w2t/cmd/extract"
	"whisper-transcriber/cmd/w2t/cmd/serve"
	"whisper-transcriber/cmd/w2t/cmd/transcribe"
	"whisper-transcriber/cmd/w2t/cmd/version"
	apperrors "whisper-transcriber/internal/app/errors"
)

// NewRootCmd builds the command tree. `w2t <input-path>` is the same as
// `w2t transcribe <input-path>`.
func NewRootCmd() *cobra.Command {
	opts := &cli.Options{}
	var flags transcribe.Flags

	rootCmd := &cobra.Command{
		Use:   "w2t [input-path]",
		Short: "Transcribe audio files with a local whisper engine",
		Long: `Transcribe audio files with a local whisper engine.

- w2t <file> or w2t transcribe <file> prints the transcript of a .wav or .mp3 file
- w2t extract <video> pulls the audio track out of a video first
- w2t serve starts the web dashboard and upload API`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return transcribe.Run(cmd, opts, flags, args[0])
		},
	}
	transcribe.AddFlags(rootCmd, &flags)

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default $W2T_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "V", false, "verbose output")

	rootCmd.AddCommand(transcribe.NewCmd(opts))
	rootCmd.AddCommand(extract.NewCmd(opts))
	rootCmd.AddCommand(serve.NewCmd(opts))
	rootCmd.AddCommand(version.Cmd)
	return rootCmd
}

// Run executes the CLI and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !cli.Reported(err) {
		fmt.Fprintf(stderr, "error: %s\n", errorMessage(err))
	}
	return cli.ExitCode(err)
}

func errorMessage(err error) string {
	if apperrors.KindOf(err) == apperrors.KindInternal {
		return err.Error()
	}
	return apperrors.UserMessage(err)
}
