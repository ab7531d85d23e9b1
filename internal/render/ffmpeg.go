// Package render produces video files from timelines by driving ffmpeg as a
// subprocess. Each segment is rendered to a normalized intermediate clip,
// the clips are joined with the concat demuxer, and the soundtrack is muxed
// over the result.
package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/memoryreel/memoryreel/internal/models"
)

const (
	maxStderrBytes = 8 * 1024

	defaultRenderTimeout = 30 * time.Minute
)

// Config configures the ffmpeg renderer.
type Config struct {
	FFmpegPath string        // empty = look up "ffmpeg" on PATH
	OutputDir  string        // where finished movies land
	WorkDir    string        // scratch space for intermediate clips
	Timeout    time.Duration // whole-render timeout
}

// DefaultConfig returns production defaults rooted at dataDir.
func DefaultConfig(dataDir string) Config {
	return Config{
		OutputDir: filepath.Join(dataDir, "renders"),
		WorkDir:   filepath.Join(dataDir, "work"),
		Timeout:   defaultRenderTimeout,
	}
}

// FFmpegRenderer is the production renderer.
type FFmpegRenderer struct {
	cfg    Config
	ffmpeg string // resolved binary path
}

// NewFFmpegRenderer resolves ffmpeg and prepares the output directories.
func NewFFmpegRenderer(cfg Config) (*FFmpegRenderer, error) {
	name := cfg.FFmpegPath
	if name == "" {
		name = "ffmpeg"
	}
	ffmpeg, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("cannot locate ffmpeg: %w", err)
	}

	for _, dir := range []string{cfg.OutputDir, cfg.WorkDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create render dir: %w", err)
		}
	}

	log.Printf("✅ Renderer initialized (ffmpeg: %s)", ffmpeg)
	return &FFmpegRenderer{cfg: cfg, ffmpeg: ffmpeg}, nil
}

// Render produces one video file from the timeline and returns its path.
func (r *FFmpegRenderer) Render(
	ctx context.Context,
	timeline *models.Timeline,
	media map[string]models.MediaItem,
	settings models.RenderSettings,
) (string, error) {
	startTime := time.Now()
	quality := "final"
	if settings.Preview {
		quality = "preview"
	}
	width, height, err := parseResolution(settings.Resolution)
	if err != nil {
		return "", err
	}
	log.Printf("🎥 RENDER STARTED: %d segments, %.1fs (%s, %dx%d)",
		len(timeline.Segments), timeline.TotalDuration, quality, width, height)

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	workDir, err := os.MkdirTemp(r.cfg.WorkDir, "render-*")
	if err != nil {
		return "", fmt.Errorf("cannot create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	clipPaths := make([]string, 0, len(timeline.Segments))
	for i, seg := range timeline.Segments {
		item, ok := media[seg.MediaItemID]
		if !ok {
			return "", fmt.Errorf("segment %s references unknown media item %s", seg.ID, seg.MediaItemID)
		}
		clipPath := filepath.Join(workDir, fmt.Sprintf("clip-%04d.mp4", i))
		if err := r.renderClip(ctx, seg, item, settings, width, height, clipPath); err != nil {
			return "", fmt.Errorf("segment %d: %w", i, err)
		}
		clipPaths = append(clipPaths, clipPath)
	}

	silentPath := filepath.Join(workDir, "silent.mp4")
	if err := r.concatClips(ctx, clipPaths, workDir, silentPath); err != nil {
		return "", err
	}

	outputPath := filepath.Join(r.cfg.OutputDir,
		fmt.Sprintf("movie-v%d-%s-%d.mp4", timeline.Version, quality, time.Now().Unix()))

	musicPath := ""
	if timeline.MusicItemID != "" {
		if item, ok := media[timeline.MusicItemID]; ok {
			musicPath = item.FilePath
		}
	}
	if musicPath != "" {
		if err := r.muxAudio(ctx, silentPath, musicPath, timeline.TotalDuration, outputPath); err != nil {
			return "", err
		}
	} else {
		if err := os.Rename(silentPath, outputPath); err != nil {
			return "", fmt.Errorf("cannot move render output: %w", err)
		}
	}

	log.Printf("✅ RENDER COMPLETED in %v: %s", time.Since(startTime), outputPath)
	return outputPath, nil
}

// renderClip normalizes one segment to a uniform resolution, frame rate, and
// codec so the concat demuxer can join clips without re-encoding surprises.
func (r *FFmpegRenderer) renderClip(
	ctx context.Context,
	seg models.TimelineSegment,
	item models.MediaItem,
	settings models.RenderSettings,
	width, height int,
	outPath string,
) error {
	scale := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		width, height, width, height)

	args := []string{"-y", "-hide_banner", "-loglevel", "error"}

	switch item.Type {
	case models.MediaTypeImage:
		args = append(args, "-loop", "1", "-t", fmt.Sprintf("%.3f", seg.Duration), "-i", item.FilePath)
		filter := scale
		if hasEffect(seg.Effects, models.EffectPanZoom) {
			// Slow push-in across the still's duration.
			frames := int(seg.Duration * settings.FPS)
			if frames < 1 {
				frames = 1
			}
			filter = fmt.Sprintf(
				"%s,zoompan=z='min(zoom+0.0015,1.2)':d=%d:s=%dx%d:fps=%g",
				scale, frames, width, height, settings.FPS)
		}
		args = append(args, "-vf", filter)
	case models.MediaTypeVideo:
		if seg.OutPoint > seg.InPoint {
			args = append(args, "-ss", fmt.Sprintf("%.3f", seg.InPoint))
		}
		args = append(args, "-t", fmt.Sprintf("%.3f", seg.Duration), "-i", item.FilePath, "-vf", scale)
	default:
		return fmt.Errorf("cannot render media type %q", item.Type)
	}

	args = append(args,
		"-r", fmt.Sprintf("%g", settings.FPS),
		"-c:v", codecFor(settings.Codec),
		"-pix_fmt", "yuv420p",
		"-an",
		outPath,
	)
	return r.run(ctx, args)
}

// concatClips joins the intermediate clips with the concat demuxer.
func (r *FFmpegRenderer) concatClips(ctx context.Context, clipPaths []string, workDir, outPath string) error {
	var list strings.Builder
	for _, p := range clipPaths {
		fmt.Fprintf(&list, "file '%s'\n", p)
	}
	listPath := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return fmt.Errorf("cannot write concat list: %w", err)
	}

	return r.run(ctx, []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "concat", "-safe", "0", "-i", listPath,
		"-c", "copy",
		outPath,
	})
}

// muxAudio lays the soundtrack under the video, trimmed to the movie length
// with a short fade-out.
func (r *FFmpegRenderer) muxAudio(ctx context.Context, videoPath, audioPath string, duration float64, outPath string) error {
	fadeStart := duration - 2.0
	if fadeStart < 0 {
		fadeStart = 0
	}
	return r.run(ctx, []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-filter_complex", fmt.Sprintf("[1:a]atrim=0:%.3f,afade=t=out:st=%.3f:d=2[a]", duration, fadeStart),
		"-map", "0:v", "-map", "[a]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outPath,
	})
}

// run executes ffmpeg with a bounded stderr capture.
func (r *FFmpegRenderer) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.ffmpeg, args...)
	var stderrBuf bytes.Buffer
	cmd.Stderr = &limitedWriter{buf: &stderrBuf, limit: maxStderrBytes}
	cmd.Stdout = io.Discard

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w (stderr: %s)", err, tail(stderrBuf.String(), 512))
	}
	return nil
}

// parseResolution splits a "WxH" string into its dimensions.
func parseResolution(resolution string) (int, int, error) {
	parts := strings.SplitN(resolution, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed resolution %q", resolution)
	}
	var width, height int
	if _, err := fmt.Sscanf(resolution, "%dx%d", &width, &height); err != nil {
		return 0, 0, fmt.Errorf("malformed resolution %q: %w", resolution, err)
	}
	return width, height, nil
}

// codecFor maps the settings codec name to the ffmpeg encoder.
func codecFor(codec string) string {
	switch codec {
	case "h265", "hevc":
		return "libx265"
	default:
		return "libx264"
	}
}

func hasEffect(effects []string, name string) bool {
	for _, e := range effects {
		if e == name {
			return true
		}
	}
	return false
}

func tail(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter keeps only the last `limit` bytes written to it.
type limitedWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.buf.Write(p)
	if lw.buf.Len() > lw.limit {
		b := lw.buf.Bytes()
		t := make([]byte, lw.limit)
		copy(t, b[len(b)-lw.limit:])
		lw.buf.Reset()
		lw.buf.Write(t)
	}
	return n, nil
}
