package scanner

import "image"

// Device is a camera the host exposes for capture.
type Device interface {
	ID() string
	Label() string
	// Open acquires the device and starts delivering frames. The returned
	// session owns the device handle until Close.
	Open() (Session, error)
}

// Session is a scoped capture session. Frames is closed when the session
// ends; Close releases the device handle and is safe to call once.
type Session interface {
	Frames() <-chan image.Image
	Close() error
}

// Enumerator lists the capture devices available to the host.
type Enumerator interface {
	Devices() ([]Device, error)
}
