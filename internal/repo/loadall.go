package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// LoadAll loads the locations using a pool of workers and returns them in
// the order given. The first failure cancels the remaining loads and is
// returned.
func (l *Loader) LoadAll(ctx context.Context, locations []string, workers int) (Repositories, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(locations) {
		workers = len(locations)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		index    int
		location string
	}
	jobs := make(chan job, len(locations))
	out := make(Repositories, len(locations))

	var bar *progressbar.ProgressBar
	if l.progress != nil {
		// a single progress bar for total sources
		bar = progressbar.NewOptions(len(locations),
			progressbar.OptionSetWriter(l.progress),
			progressbar.OptionSetDescription("loading"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

	// start worker goroutines
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					continue
				}
				r, err := l.Load(ctx, j.location)
				if err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
					l.log.Errorf("loading %s failed: %v", j.location, err)
					continue
				}
				out[j.index] = r
				if bar != nil {
					bar.Add(1)
				}
			}
		}()
	}

	// enqueue jobs
	for i, loc := range locations {
		jobs <- job{index: i, location: loc}
	}
	close(jobs)

	wg.Wait()
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(l.progress)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
