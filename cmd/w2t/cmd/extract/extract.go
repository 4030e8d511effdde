package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"whisper-transcriber/cmd/w2t/cmd/cli"
	"whisper-transcriber/cmd/w2t/cmd/transcribe"
)

// NewCmd creates the extract command.
func NewCmd(opts *cli.Options) *cobra.Command {
	var flags transcribe.Flags
	var audioPath string

	cmd := &cobra.Command{
		Use:   "extract <video-path>",
		Short: "Extract the audio track of a video and transcribe it",
		Long: `Extract the audio track of a video as 16 kHz mono PCM WAV with ffmpeg, then
transcribe it. The WAV file is kept, next to the video unless --audio is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			video := args[0]
			if audioPath == "" {
				audioPath = strings.TrimSuffix(video, filepath.Ext(video)) + ".wav"
			}

			ctx := cmd.Context()
			application, cleanup, err := cli.Bootstrap(ctx, opts, true)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := application.Decoder.ExtractAudio(ctx, video, audioPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Audio extracted to %s\n", audioPath)

			result, err := cli.Transcribe(ctx, application, audioPath, flags.Language, flags.Progress, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return cli.WriteTranscript(flags.Output, cmd.OutOrStdout(), cmd.ErrOrStderr(), result.Text)
		},
	}
	transcribe.AddFlags(cmd, &flags)
	cmd.Flags().StringVarP(&audioPath, "audio", "a", "", "where to write the extracted WAV (default: next to the video)")
	return cmd
}
