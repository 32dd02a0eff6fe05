package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec. A positive maxOutput stops the
// command once its standard output grows past that many bytes.
type execRunner struct {
	maxOutput int64
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	stdout := &cappedBuffer{limit: r.maxOutput}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if stdout.exceeded {
		return nil, fmt.Errorf("%s: %w", name, errTextLimit)
	}
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrPDFToolNotFound
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.buf.Bytes(), nil
}

type cappedBuffer struct {
	buf      bytes.Buffer
	limit    int64
	exceeded bool
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if c.limit > 0 && int64(c.buf.Len()+len(p)) > c.limit {
		c.exceeded = true
		return 0, errTextLimit
	}
	return c.buf.Write(p)
}

// CheckAvailable reports whether the pdftotext binary at path can be found.
func CheckAvailable(path string) error {
	if _, err := exec.LookPath(path); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

type pdfExtractor struct {
	tool    string
	runner  CommandRunner
	maxText int64
	logger  *slog.Logger
}

// extract validates the PDF with pdfcpu and converts it to text with
// pdftotext. pdftotext separates pages with form feeds.
func (p *pdfExtractor) extract(ctx context.Context, data []byte) (*Text, error) {
	pageCount := p.pageCount(data)

	tmp, err := os.CreateTemp("", "counsel-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	out, err := p.runner.Run(ctx, p.tool, "-enc", "UTF-8", "-eol", "unix", tmp.Name(), "-")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: pdf: %w", ErrExtractionFailed, err)
	}
	if p.maxText > 0 && int64(len(out)) > p.maxText {
		return nil, fmt.Errorf("%w: pdf: %w", ErrExtractionFailed, errTextLimit)
	}

	text := fromPlain(string(out))
	if pageCount > text.PageCount {
		text.PageCount = pageCount
	}
	return text, nil
}

// pageCount reads the page count with pdfcpu. Failures are logged and
// reported as zero so extraction can still proceed.
func (p *pdfExtractor) pageCount(data []byte) int {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		p.logger.Warn("failed to read PDF page count", "error", err)
		return 0
	}
	return count
}
