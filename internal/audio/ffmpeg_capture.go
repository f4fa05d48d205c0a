// Package audio captures microphone PCM by running ffmpeg as a child process.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"laudo/internal/ports"
)

const (
	defaultStartupGrace = 250 * time.Millisecond
	stopTimeout         = 1200 * time.Millisecond
)

// FFMPEGCapture streams signed 16-bit little-endian PCM from an ffmpeg input
// device.
type FFMPEGCapture struct {
	command      string
	startupGrace time.Duration
}

func NewFFMPEGCapture(command string) *FFMPEGCapture {
	if strings.TrimSpace(command) == "" {
		command = "ffmpeg"
	}
	return &FFMPEGCapture{command: command, startupGrace: defaultStartupGrace}
}

// Available reports whether the capture command resolves.
func (c *FFMPEGCapture) Available() bool {
	_, err := exec.LookPath(c.command)
	return err == nil
}

// Start launches ffmpeg. A process that dies within the startup grace period
// (missing device, bad input format) is reported as an error here instead of
// as an empty stream.
func (c *FFMPEGCapture) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	cmd := exec.CommandContext(ctx, c.command, captureArgs(cfg)...)
	stderr := &lockedBuffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
		close(exited)
	}()

	timer := time.NewTimer(c.startupGrace)
	defer timer.Stop()
	select {
	case err := <-exited:
		if err != nil {
			return nil, fmt.Errorf("ffmpeg exited before capture started: %w: %s", err, stderr.Trimmed())
		}
		return nil, errors.New("ffmpeg exited before capture started")
	case <-timer.C:
	}

	return &captureSession{
		stdout:  stdout,
		stderr:  stderr,
		process: cmd.Process,
		exited:  exited,
	}, nil
}

func captureArgs(cfg ports.AudioConfig) []string {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}

	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"-",
	}
}

type captureSession struct {
	stdout  io.ReadCloser
	stderr  *lockedBuffer
	process *os.Process
	exited  <-chan error

	stopOnce sync.Once
	stopErr  error
}

func (s *captureSession) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *captureSession) Close() error {
	return s.Stop()
}

// Stop interrupts ffmpeg, escalating to kill when it does not exit in time.
func (s *captureSession) Stop() error {
	s.stopOnce.Do(func() {
		s.stopErr = s.terminate()

		if err := s.stdout.Close(); err != nil && !errors.Is(err, os.ErrClosed) && s.stopErr == nil {
			s.stopErr = err
		}
		if s.stopErr != nil {
			if detail := s.stderr.Trimmed(); detail != "" {
				s.stopErr = fmt.Errorf("%w: %s", s.stopErr, detail)
			}
		}
	})
	return s.stopErr
}

func (s *captureSession) terminate() error {
	if s.process != nil {
		_ = s.process.Signal(os.Interrupt)
	}

	timer := time.NewTimer(stopTimeout)
	defer timer.Stop()
	select {
	case err, ok := <-s.exited:
		if !ok {
			return nil
		}
		return ignoreExitStatus(err)
	case <-timer.C:
	}

	if s.process != nil {
		_ = s.process.Kill()
	}
	err, ok := <-s.exited
	if !ok {
		return nil
	}
	return ignoreExitStatus(err)
}

// ignoreExitStatus drops the non-zero exit ffmpeg reports when interrupted.
func ignoreExitStatus(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// lockedBuffer collects stderr written by the exec copier goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Trimmed() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}
