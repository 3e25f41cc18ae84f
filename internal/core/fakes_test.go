package core

import (
	"context"
	"errors"
	"io"
	"sync"
)

type fakeRelay struct {
	mu      sync.Mutex
	sent    []Envelope
	failFor map[string]error
}

func (r *fakeRelay) Send(_ context.Context, env *Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, *env)
	if err, ok := r.failFor[env.To]; ok {
		return err
	}
	return nil
}

type fakeLog struct {
	entries []DeliveryAttempt
	err     error
}

func (l *fakeLog) Append(_ context.Context, attempts ...DeliveryAttempt) error {
	if l.err != nil {
		return l.err
	}
	l.entries = append(l.entries, attempts...)
	return nil
}

func (l *fakeLog) Load(context.Context) ([]DeliveryAttempt, error) {
	return l.entries, nil
}

type fakeExtractor struct {
	calls int
	text  string
	err   error
}

func (e *fakeExtractor) Extract(context.Context, Document) (string, error) {
	e.calls++
	return e.text, e.err
}

type fakeDrafter struct {
	calls  int
	last   DraftRequest
	result DraftResult
	err    error
}

func (d *fakeDrafter) Draft(_ context.Context, req DraftRequest) (DraftResult, error) {
	d.calls++
	d.last = req
	return d.result, d.err
}

type fakeCache struct {
	entries map[string]CacheEntry
}

func (c *fakeCache) Get(_ context.Context, digest string) (*CacheEntry, error) {
	e, ok := c.entries[digest]
	if !ok {
		return nil, errors.New("not found")
	}
	return &e, nil
}

func (c *fakeCache) Set(_ context.Context, entry *CacheEntry) error {
	c.entries[entry.Digest] = *entry
	return nil
}

func (c *fakeCache) Delete(_ context.Context, digest string) error {
	delete(c.entries, digest)
	return nil
}

func (c *fakeCache) Cleanup(context.Context) error {
	return nil
}

// stubValidator accepts everything unless err is set
type stubValidator struct {
	app *Application
	err error
}

func (v *stubValidator) Validate(ApplicationRequest) (*Application, error) {
	return v.app, v.err
}

func (v *stubValidator) ValidateTestEmail(Credentials, string) error {
	return v.err
}

// countingSource counts how many times the payload was opened
type countingSource struct {
	payload []byte
	opens   int
}

func (s *countingSource) Open() (io.ReadCloser, error) {
	s.opens++
	return BytesAttachment(s.payload).Open()
}
