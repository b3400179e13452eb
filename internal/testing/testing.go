// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/tbx/internal/models"
	"github.com/desertthunder/tbx/internal/shared"
)

// MockTrello is a test double for the services.Service interface backed by in-memory boards.
//
// Writes are recorded in call order. FailCards maps a card id to the error its write returns.
type MockTrello struct {
	Boards    map[string]*models.Board
	FailCards map[string]error
	FetchErr  error

	mu      sync.Mutex
	Updates []CardUpdate
	Creates []models.CardCopy
	Deletes []string
}

// CardUpdate is one recorded call to UpdateCard.
type CardUpdate struct {
	CardID string
	Patch  models.CardPatch
}

// NewMockTrello creates a mock serving the given boards by id.
func NewMockTrello(boards ...*models.Board) *MockTrello {
	m := &MockTrello{Boards: map[string]*models.Board{}, FailCards: map[string]error{}}
	for _, b := range boards {
		m.Boards[b.ID] = b
	}
	return m
}

func (m *MockTrello) Name() string { return "mock" }

func (m *MockTrello) FetchBoard(ctx context.Context, boardID string) (*models.Board, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	b, ok := m.Boards[boardID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrBoardNotFound, boardID)
	}
	return b, nil
}

func (m *MockTrello) UpdateCard(ctx context.Context, cardID string, patch models.CardPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates = append(m.Updates, CardUpdate{CardID: cardID, Patch: patch})
	return m.FailCards[cardID]
}

func (m *MockTrello) CreateCard(ctx context.Context, req models.CardCopy) (*models.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Creates = append(m.Creates, req)
	if err := m.FailCards[req.SourceCardID]; err != nil {
		return nil, err
	}
	return &models.Card{ID: req.SourceCardID + "-copy", Name: req.Name, ListID: req.ListID}, nil
}

func (m *MockTrello) DeleteCard(ctx context.Context, cardID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes = append(m.Deletes, cardID)
	return m.FailCards[cardID]
}

// Writes returns the total number of recorded write calls.
func (m *MockTrello) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Updates) + len(m.Creates) + len(m.Deletes)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
