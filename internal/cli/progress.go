package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// galleryProgress reports gallery generation with a progress bar.
type galleryProgress struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

// newGalleryProgress creates a progress bar over total items writing to w.
func newGalleryProgress(w io.Writer, total int, quiet bool) *galleryProgress {
	p := &galleryProgress{quiet: quiet}
	if quiet {
		return p
	}

	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Generating gallery"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
	return p
}

// OnItemStart shows the item being generated.
func (p *galleryProgress) OnItemStart(name string) {
	if p.quiet || p.bar == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("Generating %-16s", name))
}

// OnItemDone advances the bar by one item.
func (p *galleryProgress) OnItemDone() {
	if p.quiet || p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

// Finish completes the bar.
func (p *galleryProgress) Finish() {
	if p.quiet || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
