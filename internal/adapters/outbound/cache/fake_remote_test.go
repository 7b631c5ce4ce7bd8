package cache_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"
)

// fakeRemote is an in-memory RemoteRuleStore that counts calls per name.
type fakeRemote struct {
	mu          sync.Mutex
	files       map[string]string
	existsErr   error
	fetchErr    error
	fetchDelay  time.Duration
	existsCalls map[string]int
	fetchCalls  map[string]int
}

func newFakeRemote(files map[string]string) *fakeRemote {
	return &fakeRemote{
		files:       files,
		existsCalls: make(map[string]int),
		fetchCalls:  make(map[string]int),
	}
}

func (f *fakeRemote) Exists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls[name]++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.files[name]
	return ok, nil
}

func (f *fakeRemote) Fetch(_ context.Context, name string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.fetchCalls[name]++
	body, ok := f.files[name]
	err := f.fetchErr
	delay := f.fetchDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeRemote) calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existsCalls[name] + f.fetchCalls[name]
}

func (f *fakeRemote) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.existsCalls {
		n += c
	}
	for _, c := range f.fetchCalls {
		n += c
	}
	return n
}
