package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragsearch/internal/domain"
)

type fakePort struct {
	answer string
	err    error
	calls  []string
	topK   []int
}

func (f *fakePort) SearchAndSummarize(_ context.Context, query string, topK int) (string, error) {
	f.calls = append(f.calls, query)
	f.topK = append(f.topK, topK)
	return f.answer, f.err
}

func (f *fakePort) Info() domain.IndexInfo {
	return domain.IndexInfo{Documents: 2, Chunks: 9, Embedder: "tfidf", EmbeddingModel: "all-MiniLM-L6-v2", Digest: "Corpus digest."}
}

func typeQuery(t *testing.T, m Model, q string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(q)})
	return next.(Model)
}

// runAsk presses enter and feeds the query command's answer back into the model.
func runAsk(t *testing.T, m Model) Model {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	require.True(t, m.busy)

	answer := m.ask(m.input.Value())()
	next, _ = m.Update(answer)
	return next.(Model)
}

func TestModel_QueryShowsAnswer(t *testing.T) {
	port := &fakePort{answer: "Ovens bake bread."}
	m := New(context.Background(), port, 3)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = next.(Model)

	m = typeQuery(t, m, "bread?")
	m = runAsk(t, m)

	assert.False(t, m.busy)
	assert.Equal(t, "Ovens bake bread.", m.answer)
	assert.Equal(t, "bread?", m.lastQuery)
	assert.Contains(t, m.View(), "Ovens bake bread.")
	assert.Contains(t, m.View(), "Corpus digest.")
	assert.Equal(t, []int{3}, port.topK[len(port.topK)-1:])
}

func TestModel_QueryError(t *testing.T) {
	port := &fakePort{err: errors.New("generation failure: connection refused")}
	m := New(context.Background(), port, 5)
	m = typeQuery(t, m, "anything")
	m = runAsk(t, m)

	assert.Contains(t, m.status, "connection refused")
	assert.Empty(t, m.answer)
}

func TestModel_EmptyQueryIgnored(t *testing.T) {
	port := &fakePort{}
	m := New(context.Background(), port, 5)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, next.(Model).busy)
	assert.Empty(t, port.calls)
}

func TestModel_Quit(t *testing.T) {
	m := New(context.Background(), &fakePort{}, 5)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := New(context.Background(), &fakePort{}, 5)
	assert.Equal(t, "Loading...", m.View())
}
