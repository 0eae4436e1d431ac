package pagecontext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"github.com/candelahq/candela/internal/interfaces"
	"github.com/candelahq/candela/internal/logging"
	"github.com/candelahq/candela/internal/model"
)

// ChromedpProvider resolves element context from a live page in a headless
// browser. One provider owns one browser tab pinned to one URL; create a
// new provider per page.
type ChromedpProvider struct {
	cfg *Config

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	logger logging.Logger
}

// elementContextJS evaluates in the page and returns the element's runtime
// properties. It must never throw: a missing element yields {found:false}.
const elementContextJS = `(() => {
	const el = document.querySelector(%q);
	if (!el) return { found: false };
	const rect = el.getBoundingClientRect();
	const style = window.getComputedStyle(el);
	const aria = {};
	for (const attr of el.attributes) {
		if (attr.name.startsWith('aria-')) aria[attr.name] = attr.value;
	}
	return {
		found: true,
		isInViewport: rect.top < window.innerHeight && rect.bottom > 0,
		isHidden: el.offsetParent === null || style.display === 'none' || style.visibility === 'hidden',
		isInModal: !!el.closest('[role="dialog"], .modal, [aria-modal="true"]'),
		hasComplexDescendants: el.querySelectorAll('*').length > %d,
		tagName: el.tagName.toLowerCase(),
		ariaAttributes: aria
	};
})()`

// NewChromedpProvider launches a browser tab, navigates to cfg.TargetURL
// and waits for the network to settle before returning.
func NewChromedpProvider(cfg *Config, logger interfaces.Logger) (*ChromedpProvider, error) {
	if cfg == nil || cfg.TargetURL == "" {
		return nil, errors.New("pagecontext: chromedp backend requires a target URL")
	}
	if logger == nil {
		return nil, errors.New("pagecontext: nil logger")
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	p := &ChromedpProvider{
		cfg:           cfg,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		logger:        logger.With(logging.Field{Key: "component", Value: "chromedp-provider"}),
	}

	if err := p.navigate(cfg.TargetURL, cfg.SettleTimeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("navigating to %s: %w", cfg.TargetURL, err)
	}
	p.logger.Info("page loaded", logging.Field{Key: "url", Value: cfg.TargetURL})
	return p, nil
}

// waitNetworkIdle returns a channel closed once no network request has been
// in flight for idleAfter.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) <-chan struct{} {
	idle := make(chan struct{})
	var activeReqs int32
	var timerMu sync.Mutex
	var timer *time.Timer
	var once sync.Once

	startTimer := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() { close(idle) })
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&activeReqs, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&activeReqs, -1) <= 0 {
				startTimer()
			}
		}
	})

	// Cover pages that issue no requests after navigation.
	startTimer()
	return idle
}

func (p *ChromedpProvider) navigate(url string, settle time.Duration) error {
	if settle <= 0 {
		settle = 10 * time.Second
	}
	navCtx, cancel := context.WithTimeout(p.browserCtx, settle*2)
	defer cancel()

	idle := waitNetworkIdle(p.browserCtx, 2*time.Second)

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return err
	}

	select {
	case <-idle:
	case <-navCtx.Done():
		// Settle timeout is advisory; proceed with whatever has loaded.
		p.logger.Warn("network did not settle before timeout", logging.Field{Key: "url", Value: url})
	}
	return nil
}

// GetElementContext evaluates the element's runtime properties in the live
// page. A selector that matches nothing reports (nil, nil).
func (p *ChromedpProvider) GetElementContext(ctx context.Context, selector string) (*model.ElementContext, error) {
	type result struct {
		Found bool `json:"found"`
		model.ElementContext
	}

	evalCtx, cancel := mergeDeadline(p.browserCtx, ctx)
	defer cancel()

	var res result
	js := fmt.Sprintf(elementContextJS, selector, model.ComplexDescendantThreshold)
	if err := chromedp.Run(evalCtx, chromedp.Evaluate(js, &res)); err != nil {
		return nil, fmt.Errorf("evaluating element context for %q: %w", selector, err)
	}
	if !res.Found {
		return nil, nil
	}
	ec := res.ElementContext
	return &ec, nil
}

// CaptureScreenshot stores an element screenshot under the evidence
// directory as <rule>-<uuid>.png and returns the path. Capture is disabled
// when no evidence directory is configured.
func (p *ChromedpProvider) CaptureScreenshot(ctx context.Context, selector, ruleID string) (string, error) {
	if p.cfg.EvidenceDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(p.cfg.EvidenceDir, 0755); err != nil {
		return "", fmt.Errorf("creating evidence directory: %w", err)
	}

	shotCtx, cancel := mergeDeadline(p.browserCtx, ctx)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(shotCtx, chromedp.Screenshot(selector, &buf, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("capturing screenshot for %q: %w", selector, err)
	}

	path := filepath.Join(p.cfg.EvidenceDir, fmt.Sprintf("%s-%s.png", ruleID, uuid.New().String()))
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return "", fmt.Errorf("writing screenshot: %w", err)
	}
	return path, nil
}

// Close tears down the browser tab and allocator.
func (p *ChromedpProvider) Close() error {
	if p.browserCancel != nil {
		p.browserCancel()
	}
	if p.allocCancel != nil {
		p.allocCancel()
	}
	return nil
}

// mergeDeadline applies the caller context's deadline and cancelation to
// the browser context so chromedp actions stop when either side gives up.
func mergeDeadline(browserCtx, callerCtx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := callerCtx.Deadline(); ok {
		return context.WithDeadline(browserCtx, deadline)
	}
	merged, cancel := context.WithCancel(browserCtx)
	stop := context.AfterFunc(callerCtx, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}

var _ interfaces.ContextProvider = (*ChromedpProvider)(nil)
