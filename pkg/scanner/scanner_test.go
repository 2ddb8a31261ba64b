package scanner

import (
	"bytes"
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	qrgen "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora/internal/domain"
)

type fakeSession struct {
	frames chan image.Image
	mu     sync.Mutex
	closed bool
	log    *eventLog
	id     string
}

func (s *fakeSession) Frames() <-chan image.Image { return s.frames }

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.log.add("close:" + s.id)
	return nil
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeDevice struct {
	id   string
	log  *eventLog
	last *fakeSession
}

func (d *fakeDevice) ID() string    { return d.id }
func (d *fakeDevice) Label() string { return "Camera " + d.id }

func (d *fakeDevice) Open() (Session, error) {
	d.log.add("open:" + d.id)
	s := &fakeSession{frames: make(chan image.Image, 4), log: d.log, id: d.id}
	d.last = s
	return s, nil
}

type fakeEnumerator struct {
	devices []Device
}

func (e *fakeEnumerator) Devices() ([]Device, error) { return e.devices, nil }

type eventLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *eventLog) add(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func qrFrame(t *testing.T, content string) image.Image {
	t.Helper()
	code, err := qrgen.New(content, qrgen.Medium)
	require.NoError(t, err)
	return code.Image(256)
}

func testOptions() Options {
	return Options{
		ScanInterval: 5 * time.Millisecond,
		RetryDelay:   10 * time.Millisecond,
		CloseDelay:   10 * time.Millisecond,
	}
}

// waitNotice reads notices until one matching the state arrives.
func waitNotice(t *testing.T, ch <-chan Notice, want State) Notice {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case n, ok := <-ch:
			if !ok {
				t.Fatalf("notices closed while waiting for state %v", want)
			}
			if n.State == want {
				return n
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %v", want)
		}
	}
}

func newTestController(devices []Device, submit SubmitFunc, loggedIn bool) *Controller {
	return New(&fakeEnumerator{devices: devices}, submit, func() bool { return loggedIn }, testOptions())
}

func TestScanFrameSuccess(t *testing.T) {
	log := &eventLog{}
	dev := &fakeDevice{id: "cam0", log: log}

	var (
		mu        sync.Mutex
		submitted string
	)
	submit := func(_ context.Context, raw string) (*domain.CheckInResult, error) {
		mu.Lock()
		submitted = raw
		mu.Unlock()
		return &domain.CheckInResult{Message: "recorded"}, nil
	}

	c := newTestController([]Device{dev}, submit, true)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	dev.last.frames <- qrFrame(t, `{"payload":"raw"}`)

	n := waitNotice(t, c.Notices(), StateSucceeded)
	require.NotNil(t, n.Result)
	assert.Equal(t, "recorded", n.Result.Message)

	mu.Lock()
	assert.Equal(t, `{"payload":"raw"}`, submitted)
	mu.Unlock()

	// Success auto-closes after the confirmation delay and releases the camera.
	waitNotice(t, c.Notices(), StateClosed)
	assert.True(t, dev.last.isClosed())
}

func TestBadPayloadResumesScanning(t *testing.T) {
	log := &eventLog{}
	dev := &fakeDevice{id: "cam0", log: log}

	calls := 0
	var mu sync.Mutex
	submit := func(_ context.Context, raw string) (*domain.CheckInResult, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return nil, domain.ErrInvalidPayload
		}
		return &domain.CheckInResult{}, nil
	}

	c := newTestController([]Device{dev}, submit, true)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	dev.last.frames <- qrFrame(t, "bad-but-decodable")
	n := waitNotice(t, c.Notices(), StateScanning)
	for n.Err == nil {
		n = waitNotice(t, c.Notices(), StateScanning)
	}
	assert.ErrorIs(t, n.Err, domain.ErrInvalidPayload)

	// The session survives the bad frame; the next one succeeds.
	dev.last.frames <- qrFrame(t, "good")
	waitNotice(t, c.Notices(), StateSucceeded)
}

func TestStaleTokenResumesScanning(t *testing.T) {
	log := &eventLog{}
	dev := &fakeDevice{id: "cam0", log: log}

	calls := 0
	var mu sync.Mutex
	submit := func(_ context.Context, _ string) (*domain.CheckInResult, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return nil, domain.ErrInvalidToken
		}
		return &domain.CheckInResult{}, nil
	}

	c := newTestController([]Device{dev}, submit, true)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	// The venue display rotated between reading the frame and submitting it.
	dev.last.frames <- qrFrame(t, "rotated-away")
	n := waitNotice(t, c.Notices(), StateScanning)
	for n.Err == nil {
		n = waitNotice(t, c.Notices(), StateScanning)
	}
	assert.ErrorIs(t, n.Err, domain.ErrInvalidToken)
	assert.False(t, dev.last.isClosed())

	// Scanning the refreshed code succeeds.
	dev.last.frames <- qrFrame(t, "refreshed")
	waitNotice(t, c.Notices(), StateSucceeded)
}

func TestMissingSessionRedirectsToLogin(t *testing.T) {
	log := &eventLog{}
	dev := &fakeDevice{id: "cam0", log: log}

	submit := func(_ context.Context, _ string) (*domain.CheckInResult, error) {
		t.Fatal("submit must not be called without a session")
		return nil, nil
	}

	c := newTestController([]Device{dev}, submit, false)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	dev.last.frames <- qrFrame(t, "anything")
	n := waitNotice(t, c.Notices(), StateLoginRequired)
	assert.ErrorIs(t, n.Err, domain.ErrUnauthenticated)

	// The camera is released before the redirect.
	assert.True(t, dev.last.isClosed())
}

func TestRejectionClosesSession(t *testing.T) {
	log := &eventLog{}
	dev := &fakeDevice{id: "cam0", log: log}

	submit := func(_ context.Context, _ string) (*domain.CheckInResult, error) {
		return nil, domain.ErrAttendanceClosed
	}

	c := newTestController([]Device{dev}, submit, true)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	dev.last.frames <- qrFrame(t, "valid-looking")
	n := waitNotice(t, c.Notices(), StateClosed)
	assert.ErrorIs(t, n.Err, domain.ErrAttendanceClosed)
	assert.True(t, dev.last.isClosed())
}

func TestNextDeviceReleasesPreviousCamera(t *testing.T) {
	log := &eventLog{}
	dev0 := &fakeDevice{id: "cam0", log: log}
	dev1 := &fakeDevice{id: "cam1", log: log}

	submit := func(_ context.Context, _ string) (*domain.CheckInResult, error) {
		return &domain.CheckInResult{}, nil
	}

	c := newTestController([]Device{dev0, dev1}, submit, true)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	require.NoError(t, c.NextDevice())
	assert.Equal(t, "cam1", c.CurrentDevice().ID())
	assert.Equal(t, []string{"open:cam0", "close:cam0", "open:cam1"}, log.all())

	// Cycling wraps around.
	require.NoError(t, c.NextDevice())
	assert.Equal(t, "cam0", c.CurrentDevice().ID())
}

func TestManualEntryBypassesCamera(t *testing.T) {
	var (
		mu        sync.Mutex
		submitted string
	)
	submit := func(_ context.Context, raw string) (*domain.CheckInResult, error) {
		mu.Lock()
		submitted = raw
		mu.Unlock()
		return &domain.CheckInResult{}, nil
	}

	// No Start: manual entry must work when the camera is inoperable.
	c := newTestController(nil, submit, true)
	c.SubmitManual(context.Background(), "typed-by-hand")

	waitNotice(t, c.Notices(), StateSucceeded)
	mu.Lock()
	assert.Equal(t, "typed-by-hand", submitted)
	mu.Unlock()
}

func TestSubmitImageFeedsPipeline(t *testing.T) {
	var (
		mu        sync.Mutex
		submitted string
	)
	submit := func(_ context.Context, raw string) (*domain.CheckInResult, error) {
		mu.Lock()
		submitted = raw
		mu.Unlock()
		return &domain.CheckInResult{}, nil
	}

	c := newTestController(nil, submit, true)
	require.NoError(t, c.SubmitImage(context.Background(), qrFrame(t, "from-upload")))

	waitNotice(t, c.Notices(), StateSucceeded)
	mu.Lock()
	assert.Equal(t, "from-upload", submitted)
	mu.Unlock()
}

func TestSubmitImageWithoutCodeIsTransient(t *testing.T) {
	submit := func(_ context.Context, _ string) (*domain.CheckInResult, error) {
		t.Fatal("submit must not be called for an undecodable image")
		return nil, nil
	}

	c := newTestController(nil, submit, true)
	blank := image.NewRGBA(image.Rect(0, 0, 64, 64))
	err := c.SubmitImage(context.Background(), blank)
	assert.ErrorIs(t, err, ErrNoCode)
}

func TestDecodeImageFile(t *testing.T) {
	png, err := qrgen.Encode("file-upload-payload", qrgen.Medium, 256)
	require.NoError(t, err)

	raw, err := DecodeImageFile(bytes.NewReader(png))
	require.NoError(t, err)
	assert.Equal(t, "file-upload-payload", raw)
}

func TestCloseIsIdempotentAndReleasesCamera(t *testing.T) {
	log := &eventLog{}
	dev := &fakeDevice{id: "cam0", log: log}

	c := newTestController([]Device{dev}, func(_ context.Context, _ string) (*domain.CheckInResult, error) {
		return &domain.CheckInResult{}, nil
	}, true)
	require.NoError(t, c.Start(context.Background()))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, dev.last.isClosed())
	assert.Equal(t, StateClosed, c.State())

	// Starting twice is rejected even after close.
	err := c.Start(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestStartWithoutDevices(t *testing.T) {
	c := New(&fakeEnumerator{}, func(_ context.Context, _ string) (*domain.CheckInResult, error) {
		return nil, errors.New("unused")
	}, func() bool { return true }, testOptions())

	err := c.Start(context.Background())
	assert.ErrorIs(t, err, ErrNoDevices)
}
