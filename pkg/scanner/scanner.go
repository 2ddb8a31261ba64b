// Package scanner drives a camera-based QR check-in session: device
// enumeration and switching, continuous decode at a fixed rate, and the
// fallback paths (image upload, manual entry) that feed the same
// decode -> validate pipeline.
//
// The controller is transport-agnostic: it produces raw decoded strings and
// delegates them to a SubmitFunc, which is expected to call the check-in
// endpoint.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"agora/internal/domain"
)

type State int

const (
	StateIdle State = iota
	StateScanning
	StateProcessing
	StateSucceeded
	StateLoginRequired
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateProcessing:
		return "processing"
	case StateSucceeded:
		return "succeeded"
	case StateLoginRequired:
		return "login-required"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Notice is a state-change notification for the embedding UI. Err is set for
// both transient errors (scanning resumes) and terminal ones (State is
// StateClosed or StateLoginRequired).
type Notice struct {
	State  State
	Result *domain.CheckInResult
	Err    error
}

// SubmitFunc delegates a decoded string to the check-in backend.
type SubmitFunc func(ctx context.Context, raw string) (*domain.CheckInResult, error)

// SessionCheckFunc reports whether a local authenticated session is present.
type SessionCheckFunc func() bool

var (
	ErrNoDevices      = errors.New("scanner: no capture devices available")
	ErrAlreadyStarted = errors.New("scanner: already started")
)

type Options struct {
	ScanInterval time.Duration // delay between decode attempts (default 250ms)
	RetryDelay   time.Duration // pause before rescanning after a bad payload (default 1.2s)
	CloseDelay   time.Duration // confirmation display time before auto close (default 1.3s)
	Logger       *slog.Logger
}

func (o *Options) setDefaults() {
	if o.ScanInterval <= 0 {
		o.ScanInterval = 250 * time.Millisecond
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 1200 * time.Millisecond
	}
	if o.CloseDelay <= 0 {
		o.CloseDelay = 1300 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Controller is the scanner state machine:
// idle -> scanning -> (processing -> {succeeded | scanning} | login-required).
type Controller struct {
	enum      Enumerator
	submit    SubmitFunc
	haveLogin SessionCheckFunc
	opts      Options

	mu        sync.Mutex
	state     State
	devices   []Device
	deviceIdx int
	session   Session
	cancel    context.CancelFunc
	done      chan struct{}

	notices   chan Notice
	closed    bool
	closeOnce sync.Once
}

func New(enum Enumerator, submit SubmitFunc, haveLogin SessionCheckFunc, opts Options) *Controller {
	opts.setDefaults()
	return &Controller{
		enum:      enum,
		submit:    submit,
		haveLogin: haveLogin,
		opts:      opts,
		state:     StateIdle,
		notices:   make(chan Notice, 16),
	}
}

// Start acquires the first available camera and begins continuous decoding.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	devices, err := c.enum.Devices()
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("scanner: enumerate devices: %w", err)
	}
	if len(devices) == 0 {
		c.mu.Unlock()
		return ErrNoDevices
	}
	c.devices = devices
	session, err := devices[0].Open()
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("scanner: open device %s: %w", devices[0].ID(), err)
	}
	c.session = session
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.state = StateScanning
	c.mu.Unlock()

	c.notify(Notice{State: StateScanning})
	go c.run(runCtx)
	return nil
}

// Notices delivers state changes to the embedding UI. The channel is closed
// when the controller closes.
func (c *Controller) Notices() <-chan Notice {
	return c.notices
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentDevice returns the active capture device, or nil before Start.
func (c *Controller) CurrentDevice() Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.devices) == 0 {
		return nil
	}
	return c.devices[c.deviceIdx]
}

// NextDevice cycles to the next enumerated camera. The previous session is
// fully released before the next device is acquired.
func (c *Controller) NextDevice() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.devices) < 2 {
		return nil
	}
	if c.session != nil {
		if err := c.session.Close(); err != nil {
			return fmt.Errorf("scanner: close session: %w", err)
		}
		c.session = nil
	}
	c.deviceIdx = (c.deviceIdx + 1) % len(c.devices)
	next := c.devices[c.deviceIdx]
	session, err := next.Open()
	if err != nil {
		return fmt.Errorf("scanner: open device %s: %w", next.ID(), err)
	}
	c.session = session
	return nil
}

// SubmitManual feeds a hand-typed code into the validate pipeline, bypassing
// camera decoding entirely.
func (c *Controller) SubmitManual(ctx context.Context, raw string) {
	c.process(ctx, raw)
}

// SubmitImage decodes an uploaded frame and, on success, feeds it into the
// validate pipeline. An undecodable image is reported as a transient error.
func (c *Controller) SubmitImage(ctx context.Context, img image.Image) error {
	raw, err := DecodeFrame(img)
	if err != nil {
		c.notify(Notice{State: c.State(), Err: err})
		return err
	}
	c.process(ctx, raw)
	return nil
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.opts.ScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if c.State() != StateScanning {
			continue
		}
		frame, ok := c.nextFrame()
		if !ok {
			continue
		}
		raw, err := DecodeFrame(frame)
		if err != nil {
			// Frame without a readable code; keep scanning silently.
			continue
		}
		c.process(ctx, raw)
	}
}

func (c *Controller) nextFrame() (image.Image, bool) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return nil, false
	}
	select {
	case frame, ok := <-session.Frames():
		if !ok {
			return nil, false
		}
		return frame, true
	default:
		return nil, false
	}
}

// process runs the shared decode -> validate pipeline. The submission uses a
// non-cancellable context: check-in is idempotent, so an in-flight request is
// allowed to complete even if the modal closes mid-processing.
func (c *Controller) process(ctx context.Context, raw string) {
	c.setState(StateProcessing)
	c.notify(Notice{State: StateProcessing})

	if !c.haveLogin() {
		// Stop the camera before redirecting: no dangling device locks.
		c.releaseSession()
		c.setState(StateLoginRequired)
		c.notify(Notice{State: StateLoginRequired, Err: domain.ErrUnauthenticated})
		return
	}

	result, err := c.submit(context.WithoutCancel(ctx), raw)
	switch {
	case err == nil:
		c.setState(StateSucceeded)
		c.notify(Notice{State: StateSucceeded, Result: result})
		c.opts.Logger.Info("check-in confirmed", "already_recorded", result.AlreadyRecorded)
		go c.closeAfter(ctx, c.opts.CloseDelay)
	case errors.Is(err, domain.ErrInvalidPayload),
		errors.Is(err, domain.ErrEventMismatch),
		errors.Is(err, domain.ErrInvalidToken):
		// A single bad frame must not end the flow: surface the error inline
		// and resume scanning after a short pause. A stale token counts too,
		// since the venue display may have rotated since the frame was read.
		c.notify(Notice{State: StateScanning, Err: err})
		c.pause(ctx, c.opts.RetryDelay)
		c.setState(StateScanning)
	case errors.Is(err, domain.ErrUnauthenticated):
		c.releaseSession()
		c.setState(StateLoginRequired)
		c.notify(Notice{State: StateLoginRequired, Err: err})
	default:
		// Rejections (window closed, not registered) and transport failures
		// end the session; retrying means reopening the scanner.
		c.releaseSession()
		c.setState(StateClosed)
		c.notify(Notice{State: StateClosed, Err: err})
	}
}

func (c *Controller) closeAfter(ctx context.Context, d time.Duration) {
	c.pause(ctx, d)
	c.Close()
}

func (c *Controller) pause(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) notify(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.notices <- n:
	default:
		// Drop rather than block the scan loop on a slow consumer.
	}
}

func (c *Controller) releaseSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}

// Close stops the scan loop, releases the camera and closes the notices
// channel. Safe to call from any state, any number of times.
func (c *Controller) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		cancel := c.cancel
		done := c.done
		c.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		if done != nil {
			<-done
		}
		err = c.releaseSession()
		c.mu.Lock()
		c.state = StateClosed
		select {
		case c.notices <- Notice{State: StateClosed}:
		default:
		}
		c.closed = true
		close(c.notices)
		c.mu.Unlock()
	})
	return err
}
