package pdf

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mrhoge/invoice-renamer/internal/geometry"
)

// DefaultPdftoppm is the poppler binary looked up on PATH
const DefaultPdftoppm = "pdftoppm"

// PdftoppmRenderer renders by running the poppler pdftoppm binary
type PdftoppmRenderer struct {
	path   string
	binary string
}

// NewPdftoppmRenderer checks that the binary can be found
func NewPdftoppmRenderer(path, binary string) (*PdftoppmRenderer, error) {
	if binary == "" {
		binary = DefaultPdftoppm
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm not found: %w", err)
	}
	return &PdftoppmRenderer{path: path, binary: resolved}, nil
}

// Render runs pdftoppm for one page. Clips are passed as a pixel crop so only
// the selected area is written.
func (r *PdftoppmRenderer) Render(ctx context.Context, page int, clip geometry.Rect, scale float64) (image.Image, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("invalid render scale %.2f", scale)
	}

	dir, err := os.MkdirTemp("", "invoice-renamer-render-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, r.binary, r.args(page, clip, scale, prefix)...)
	out, err := cmd.CombinedOutput()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed on page %d: %w: %s", page+1, err, strings.TrimSpace(string(out)))
	}

	f, err := os.Open(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode rendered page: %w", err)
	}
	return img, nil
}

func (r *PdftoppmRenderer) args(page int, clip geometry.Rect, scale float64, prefix string) []string {
	args := []string{
		"-q",
		"-png",
		"-singlefile",
		"-r", strconv.Itoa(int(math.Round(pointsPerInch * scale))),
		"-f", strconv.Itoa(page + 1),
		"-l", strconv.Itoa(page + 1),
	}
	if !clip.IsEmpty() {
		px := geometry.PixelRect(clip, scale)
		args = append(args,
			"-x", strconv.Itoa(px.Min.X),
			"-y", strconv.Itoa(px.Min.Y),
			"-W", strconv.Itoa(px.Dx()),
			"-H", strconv.Itoa(px.Dy()),
		)
	}
	return append(args, r.path, prefix)
}

// Close is a no-op; every render runs its own process
func (r *PdftoppmRenderer) Close() error { return nil }
