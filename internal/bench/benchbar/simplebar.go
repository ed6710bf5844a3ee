// Package benchbar provides a really simple progress bar for the benchmarking
// process.
package benchbar

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Bar is a progress bar over a known number of items.
type Bar struct {
	pb          *progressbar.ProgressBar
	description string
	maxItems    int
}

// NewBar returns a bar drawn on w.
func NewBar(w io.Writer, description string, maxItems int) *Bar {
	pb := progressbar.NewOptions(
		maxItems,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
	)
	_ = pb.Set(0)

	return &Bar{
		pb:          pb,
		description: description,
		maxItems:    maxItems,
	}
}

// Inc advances the bar by one item.
func (p *Bar) Inc() {
	_ = p.pb.Add(1)
}

// Current returns how many items were counted.
func (p *Bar) Current() int64 {
	return p.pb.State().CurrentNum
}

// Finish fills the bar and releases the line.
func (p *Bar) Finish() {
	_ = p.pb.Finish()
	_ = p.pb.Close()
}
