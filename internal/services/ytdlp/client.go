package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"ytbatch/internal/run"
	"ytbatch/internal/services"
)

// Resolution is the first search result for a query.
type Resolution struct {
	URL      string
	Title    string
	Duration string
	Uploader string
	VideoID  string
}

// ProgressUpdate captures yt-dlp download progress output.
type ProgressUpdate struct {
	Percent float64
	Message string
}

// Request describes one download invocation.
type Request struct {
	URL       string
	VideoID   string
	Mode      run.Mode
	OutputDir string
}

// Resolver defines the behaviour the workflow manager needs for the search
// phase. The boolean is false when the platform returned no results, which is
// an expected outcome rather than an error.
type Resolver interface {
	Resolve(ctx context.Context, query string) (Resolution, bool, error)
}

// Downloader defines the behaviour the workflow manager needs for the
// download phase. It returns the final output path.
type Downloader interface {
	Download(ctx context.Context, req Request, progress func(ProgressUpdate)) (string, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// Settings configures the client from application config.
type Settings struct {
	Binary         string
	SocketTimeout  int
	Retries        int
	FFmpegLocation string
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions for both resolution and download.
type Client struct {
	binary         string
	socketTimeout  int
	retries        int
	ffmpegLocation string
	exec           Executor
}

// New constructs a yt-dlp client.
func New(settings Settings, opts ...Option) (*Client, error) {
	binary := strings.TrimSpace(settings.Binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary:         binary,
		socketTimeout:  settings.SocketTimeout,
		retries:        settings.Retries,
		ffmpegLocation: strings.TrimSpace(settings.FFmpegLocation),
		exec:           commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Resolve asks the platform for exactly one search result.
func (c *Client) Resolve(ctx context.Context, query string) (Resolution, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Resolution{}, false, services.Wrap(services.ErrEngine, "ytdlp", "resolve", "empty query", nil)
	}

	args := c.commonArgs()
	args = append(args, "--dump-json", "--flat-playlist", "--skip-download", "ytsearch1:"+query)

	var jsonLine string
	err := c.exec.Run(ctx, c.binary, args, func(line string) {
		if jsonLine == "" && strings.HasPrefix(strings.TrimSpace(line), "{") {
			jsonLine = strings.TrimSpace(line)
		}
	})
	if err != nil {
		// yt-dlp exits non-zero on an unresolvable search term as well as on
		// real launch failures; without a parsed entry both are engine errors.
		return Resolution{}, false, services.Wrap(services.ErrEngine, "ytdlp", "resolve", fmt.Sprintf("search for %q", query), err)
	}
	if jsonLine == "" {
		return Resolution{}, false, nil
	}

	resolution, err := parseSearchEntry(jsonLine)
	if err != nil {
		return Resolution{}, false, services.Wrap(services.ErrEngine, "ytdlp", "resolve", "unparseable search output", err)
	}
	return resolution, true, nil
}

// Download fetches one resolved row, returning the final output path.
func (c *Client) Download(ctx context.Context, req Request, progress func(ProgressUpdate)) (string, error) {
	if strings.TrimSpace(req.URL) == "" {
		return "", services.Wrap(services.ErrEngine, "ytdlp", "download", "result URL required", nil)
	}
	if req.OutputDir == "" {
		return "", services.Wrap(services.ErrEngine, "ytdlp", "download", "output directory required", nil)
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	args := c.commonArgs()
	args = append(args,
		"--no-playlist",
		"--newline",
		"--print", "after_move:filepath",
		"--no-simulate",
		"-o", filepath.Join(req.OutputDir, outputTemplate),
	)
	args = append(args, modeArgs(req.Mode)...)
	args = append(args, req.URL)

	var finalPath string
	var lastLine string
	err := c.exec.Run(ctx, c.binary, args, func(line string) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			return
		}
		if update, ok := parseProgress(trimmed); ok {
			if progress != nil {
				progress(update)
			}
			return
		}
		lastLine = trimmed
		if path, ok := parseDestination(trimmed); ok {
			finalPath = path
			return
		}
		// --print emits the bare final path once post-processing finishes.
		if filepath.IsAbs(trimmed) && strings.HasPrefix(trimmed, req.OutputDir) {
			finalPath = trimmed
		}
	})
	if err != nil {
		detail := fmt.Sprintf("download %s", req.URL)
		if lastLine != "" {
			detail = fmt.Sprintf("%s: %s", detail, lastLine)
		}
		return "", services.Wrap(services.ErrEngine, "ytdlp", "download", detail, err)
	}

	if finalPath == "" {
		// Engine variants that do not support --print still name files with
		// the [id] token from the output template.
		if path, ok := ExistingOutput(req.OutputDir, req.VideoID, req.Mode); ok {
			finalPath = path
		}
	}
	if finalPath == "" {
		return "", services.Wrap(services.ErrEngine, "ytdlp", "download", "engine produced no output file", nil)
	}
	return finalPath, nil
}

func (c *Client) commonArgs() []string {
	args := []string{"--no-warnings"}
	if c.socketTimeout > 0 {
		args = append(args, "--socket-timeout", strconv.Itoa(c.socketTimeout))
	}
	if c.retries >= 0 {
		args = append(args, "--retries", strconv.Itoa(c.retries))
	}
	if c.ffmpegLocation != "" {
		args = append(args, "--ffmpeg-location", c.ffmpegLocation)
	}
	return args
}

// outputTemplate names files "<title> [<id>].<ext>" so re-runs can match
// existing outputs by the id token regardless of title sanitization.
const outputTemplate = "%(title).80s [%(id)s].%(ext)s"

func modeArgs(mode run.Mode) []string {
	switch mode {
	case run.ModeAudioMP3:
		return []string{"--extract-audio", "--audio-format", "mp3", "--audio-quality", "192K", "-f", "bestaudio/best"}
	case run.ModeAudioOriginal:
		return []string{"-f", "bestaudio/best"}
	case run.ModeVideoOriginal:
		return []string{"-f", "bestvideo+bestaudio/best", "--merge-output-format", "mp4"}
	default:
		return nil
	}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var scanErr error
	var once sync.Once

	// Both pipes feed one callback; serialize so handlers can keep state
	// without their own locking.
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			mu.Lock()
			forward(onLine, scanner.Text())
			mu.Unlock()
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

func forward(onLine func(string), line string) {
	if onLine != nil {
		onLine(line)
		return
	}
	fmt.Fprintln(os.Stderr, line)
}
