package audio

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ConvertToWAV transcodes an uploaded file (mp3, flac, aac, m4a, ...)
// to a mono PCM16 WAV via ffmpeg. Returns the path of the converted
// file inside dstDir.
func ConvertToWAV(ctx context.Context, srcPath, dstDir string, sampleRate int) (string, error) {
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	out := filepath.Join(dstDir, base+".wav")

	// ffmpeg -y -i input -ac 1 -ar <rate> -sample_fmt s16 -f wav output
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", srcPath,
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-sample_fmt", "s16",
		"-f", "wav",
		out,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("ffmpeg: %w: %s", err, truncate(string(output), 512))
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
