package bot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const convertTimeout = 30 * time.Second

// ConvertToWAV transcodes a Telegram voice note (OGG/Opus) to 16 kHz mono
// WAV, the input the transcription sidecar expects. Requires ffmpeg on PATH.
func ConvertToWAV(ctx context.Context, input []byte) ([]byte, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("no audio to convert")
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg is not installed: %w", err)
	}

	dir, err := os.MkdirTemp("", "voice-convert-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "input.ogg")
	dst := filepath.Join(dir, "output.wav")
	if err := os.WriteFile(src, input, 0o644); err != nil {
		return nil, fmt.Errorf("failed to stage input: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, convertTimeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", src,
		"-ar", "16000", "-ac", "1",
		"-y", dst,
	)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, stderr.String())
	}

	wav, err := os.ReadFile(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to read converted audio: %w", err)
	}
	if len(wav) == 0 {
		return nil, fmt.Errorf("conversion produced no audio")
	}
	return wav, nil
}
