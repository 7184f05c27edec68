package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"woffsmith/internal/queue"
	"woffsmith/internal/workflow"
)

// batchProgress renders run events as a percentage bar until the event
// channel closes.
type batchProgress struct {
	bar  *progressbar.ProgressBar
	done chan struct{}
}

func startBatchProgress(w io.Writer, total int, events <-chan workflow.Event, visible bool) *batchProgress {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(fmt.Sprintf("converting %d fonts", total)),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionThrottle(50*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	p := &batchProgress{bar: bar, done: make(chan struct{})}
	go p.consume(events)
	return p
}

func (p *batchProgress) consume(events <-chan workflow.Event) {
	defer close(p.done)
	for event := range events {
		switch event.Type {
		case workflow.EventTypeStatus:
			if event.Status == queue.StatusConverting && event.FileName != "" {
				p.bar.Describe(event.FileName)
			}
		case workflow.EventTypeProgress:
			if event.Running {
				_ = p.bar.Set(int(event.Progress))
			}
		}
	}
}

// Wait blocks until the event channel is closed and clears the bar.
func (p *batchProgress) Wait() {
	<-p.done
	_ = p.bar.Finish()
}
