package extractors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingExtractor always errors, for degradation tests.
type failingExtractor struct{}

func (f *failingExtractor) SupportedMIMETypes() []string { return []string{"application/x-broken"} }
func (f *failingExtractor) Priority() int                { return 50 }
func (f *failingExtractor) Extract(_ context.Context, _ []byte) (string, error) {
	return "", errors.New("boom")
}

// echoExtractor returns its input unchanged, for selection tests.
type echoExtractor struct {
	mimes    []string
	priority int
	prefix   string
}

func (e *echoExtractor) SupportedMIMETypes() []string { return e.mimes }
func (e *echoExtractor) Priority() int                { return e.priority }
func (e *echoExtractor) Extract(_ context.Context, content []byte) (string, error) {
	return e.prefix + string(content), nil
}

func TestDefaultRegistry_KnownTypes(t *testing.T) {
	r := DefaultRegistry()

	assert.True(t, r.Supported("application/pdf"))
	assert.True(t, r.Supported("text/plain"))
	assert.True(t, r.Supported("application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	assert.False(t, r.Supported("application/x-unheard-of"))
}

func TestExtract_UnknownTypeFallsBackToPlaintext(t *testing.T) {
	r := DefaultRegistry()

	text := r.Extract(context.Background(), []byte("raw bytes of unknown provenance"), "application/x-unheard-of")
	assert.Equal(t, "raw bytes of unknown provenance", text)
}

func TestExtract_MIMEParametersStripped(t *testing.T) {
	r := DefaultRegistry()

	text := r.Extract(context.Background(), []byte("hello"), "text/plain; charset=utf-8")
	assert.Equal(t, "hello", text)
}

func TestExtract_ErrorDegradesToEmpty(t *testing.T) {
	r := DefaultRegistry()
	r.Register(&failingExtractor{})

	text := r.Extract(context.Background(), []byte("whatever"), "application/x-broken")
	assert.Empty(t, text)
}

func TestExtract_CorruptPDFDegradesToEmpty(t *testing.T) {
	r := DefaultRegistry()

	text := r.Extract(context.Background(), []byte("not a pdf at all"), "application/pdf")
	assert.Empty(t, text)
}

func TestRegister_HigherPriorityWins(t *testing.T) {
	r := NewRegistry(&echoExtractor{priority: 1, prefix: "fallback:"})
	r.Register(&echoExtractor{mimes: []string{"text/x-note"}, priority: 10, prefix: "low:"})
	r.Register(&echoExtractor{mimes: []string{"text/x-note"}, priority: 80, prefix: "high:"})

	text := r.Extract(context.Background(), []byte("n"), "text/x-note")
	require.Equal(t, "high:n", text)
}
