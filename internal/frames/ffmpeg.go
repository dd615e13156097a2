package frames

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"sync"
)

const stderrTailLimit = 4 << 10

// FFmpegSource decodes a video file through an ffmpeg child process emitting
// packed rgb24 frames on stdout.
type FFmpegSource struct {
	path   string
	width  int
	height int
	cmd    *exec.Cmd
	stdout io.ReadCloser
	reader *bufio.Reader
	stderr *tailBuffer
	buf    []byte
	next   int
	total  int
	rate   float64
	done   bool
}

// OpenVideo probes path for its frame size and starts ffmpeg.
func OpenVideo(ctx context.Context, ffmpegBinary, ffprobeBinary, path string) (*FFmpegSource, error) {
	probe, err := Probe(ctx, ffprobeBinary, path)
	if err != nil {
		return nil, err
	}
	stream, ok := probe.VideoStream()
	if !ok {
		return nil, fmt.Errorf("%s: no video stream", path)
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, fmt.Errorf("%s: invalid frame size %dx%d", path, stream.Width, stream.Height)
	}
	src, err := StartFFmpeg(ctx, ffmpegBinary, path, stream.Width, stream.Height)
	if err != nil {
		return nil, err
	}
	src.rate = stream.FrameRate()
	src.total = stream.FrameCount()
	if src.total == 0 {
		src.total = int(probe.DurationSeconds() * stream.FrameRate())
	}
	return src, nil
}

// StartFFmpeg starts ffmpeg for a video whose frame size is already known.
func StartFFmpeg(ctx context.Context, binary, path string, width, height int) (*FFmpegSource, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error", "-nostdin",
		"-i", path,
		"-an", "-sn",
		"-f", "rawvideo", "-pix_fmt", "rgb24",
		"-",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	stderr := &tailBuffer{limit: stderrTailLimit}
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	return &FFmpegSource{
		path:   path,
		width:  width,
		height: height,
		cmd:    cmd,
		stdout: stdout,
		reader: bufio.NewReaderSize(stdout, width*height*3),
		stderr: stderr,
		buf:    make([]byte, width*height*3),
	}, nil
}

// Size returns the decoded frame dimensions.
func (s *FFmpegSource) Size() (int, int) {
	return s.width, s.height
}

// Len estimates the number of frames from container metadata; zero means
// unknown.
func (s *FFmpegSource) Len() int {
	return s.total
}

// FrameRate is the stream rate reported by ffprobe; zero means unknown.
func (s *FFmpegSource) FrameRate() float64 {
	return s.rate
}

// Next reads and converts the next frame.
func (s *FFmpegSource) Next(ctx context.Context) (Frame, error) {
	if err := s.read(ctx); err != nil {
		return Frame{}, err
	}
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for i, j := 0, 0; i < len(s.buf); i, j = i+3, j+4 {
		img.Pix[j] = s.buf[i]
		img.Pix[j+1] = s.buf[i+1]
		img.Pix[j+2] = s.buf[i+2]
		img.Pix[j+3] = 0xff
	}
	frame := Frame{Index: s.next, Image: img}
	s.next++
	return frame, nil
}

// Skip reads past n frames without converting them.
func (s *FFmpegSource) Skip(ctx context.Context, n int) error {
	for range n {
		if err := s.read(ctx); err != nil {
			return err
		}
		s.next++
	}
	return nil
}

// Close stops ffmpeg if it is still running and releases the pipe.
func (s *FFmpegSource) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return nil
}

func (s *FFmpegSource) read(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.done {
		return ErrExhausted
	}
	_, err := io.ReadFull(s.reader, s.buf)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return s.finish()
	case errors.Is(err, io.ErrUnexpectedEOF):
		_ = s.finish()
		return fmt.Errorf("frame %d of %s: truncated frame data", s.next, s.path)
	default:
		return fmt.Errorf("frame %d of %s: %w", s.next, s.path, err)
	}
}

// finish waits for ffmpeg after stdout closed and turns a failed exit into a
// decode error.
func (s *FFmpegSource) finish() error {
	s.done = true
	if err := s.cmd.Wait(); err != nil {
		if tail := s.stderr.String(); tail != "" {
			return fmt.Errorf("ffmpeg %s: %w: %s", s.path, err, tail)
		}
		return fmt.Errorf("ffmpeg %s: %w", s.path, err)
	}
	return ErrExhausted
}

type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(string(b.buf))
}
