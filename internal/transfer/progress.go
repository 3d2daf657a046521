package transfer

import (
	"sync"
	"time"
)

const (
	progressCeiling = 90
	progressDone    = 100
	progressReset   = 500 * time.Millisecond
)

// Progress is a synthetic upload counter. The object store reports no
// byte-level progress, so the value only approximates how far along a
// transfer is: it advances on a fixed tick, stays at or below 90 while the
// transfer runs, jumps to 100 on success and falls back to 0 shortly after.
type Progress struct {
	mu        sync.Mutex
	value     int
	uploading bool
	stop      chan struct{}
	resetT    *time.Timer
}

func NewProgress() *Progress {
	return &Progress{}
}

func (p *Progress) Value() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

func (p *Progress) Uploading() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uploading
}

// begin starts ticking and returns the function that ends the transfer.
func (p *Progress) begin(step int, every time.Duration) func(ok bool) {
	if p == nil {
		return func(bool) {}
	}

	p.mu.Lock()
	if p.resetT != nil {
		p.resetT.Stop()
	}
	p.value = 0
	p.uploading = true
	stop := make(chan struct{})
	p.stop = stop
	p.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				p.mu.Lock()
				p.value = min(p.value+step, progressCeiling)
				p.mu.Unlock()
			}
		}
	}()

	return func(ok bool) {
		close(stop)
		wg.Wait()

		p.mu.Lock()
		defer p.mu.Unlock()
		if ok {
			p.value = progressDone
		}
		p.uploading = false
		p.resetT = time.AfterFunc(progressReset, func() {
			p.mu.Lock()
			p.value = 0
			p.mu.Unlock()
		})
	}
}
