package transcribe

import (
	"github.com/spf13/cobra"

	"whisper-transcriber/cmd/w2t/cmd/cli"
)

// Flags are shared with the root command, which accepts `w2t <input-path>`.
type Flags struct {
	Language string
	Output   string
	Progress bool
}

// AddFlags registers the transcribe flags on cmd.
func AddFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().StringVarP(&flags.Language, "language", "l", "auto", "language hint: auto or a configured code such as en or hi")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "write the transcript to this file ('-' or empty for stdout)")
	cmd.Flags().BoolVar(&flags.Progress, "progress", false, "force animated progress bars even when stderr is not a terminal")
}

// NewCmd creates the transcribe command.
func NewCmd(opts *cli.Options) *cobra.Command {
	var flags Flags
	cmd := &cobra.Command{
		Use:   "transcribe <input-path>",
		Short: "Transcribe a local audio file",
		Long: `Transcribe a local .wav or .mp3 file with the configured whisper engine.

The device in use is printed first, then progress on stderr. The transcript
goes to stdout unless --output names a file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd, opts, flags, args[0])
		},
	}
	AddFlags(cmd, &flags)
	return cmd
}

// Run transcribes input and writes the transcript.
func Run(cmd *cobra.Command, opts *cli.Options, flags Flags, input string) error {
	ctx := cmd.Context()
	application, cleanup, err := cli.Bootstrap(ctx, opts, true)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := cli.Transcribe(ctx, application, input, flags.Language, flags.Progress, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return cli.WriteTranscript(flags.Output, cmd.OutOrStdout(), cmd.ErrOrStderr(), result.Text)
}
