// @title Whisper Transcriber API
// @version 1.0
// @description Upload audio files and receive transcripts from a local whisper engine.
// @BasePath /
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"whisper-transcriber/cmd/w2t/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
