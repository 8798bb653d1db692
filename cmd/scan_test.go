package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelfscan/internal/lookup"
	"github.com/lepinkainen/shelfscan/internal/provider"
)

type stubClient struct {
	rec     *provider.Record
	lookups []string
}

func (s *stubClient) Name() string { return "stub" }

func (s *stubClient) Lookup(_ context.Context, isbn string) (*provider.Record, error) {
	s.lookups = append(s.lookups, isbn)
	return s.rec, nil
}

func withStubApp(t *testing.T, client provider.Client) {
	t.Helper()
	original := newApp
	newApp = func() *app {
		return &app{service: lookup.New(nil, client)}
	}
	t.Cleanup(func() { newApp = original })
}

func withScanInput(t *testing.T, input string) {
	t.Helper()
	original := scanInput
	scanInput = strings.NewReader(input)
	t.Cleanup(func() { scanInput = original })
}

func TestScanResolvesFirstValidPayload(t *testing.T) {
	resetCmdState(t)

	client := &stubClient{rec: &provider.Record{
		ISBN:  "9780316769488",
		Title: "The Catcher in the Rye",
	}}
	withStubApp(t, client)
	withScanInput(t, "garbage\n978-0316769488\n9780316769488\n9780441013593\n")

	cmd := &ScanCmd{}
	require.NoError(t, cmd.Run())

	// Redeliveries and later barcodes never reach the lookup pipeline.
	assert.Equal(t, []string{"9780316769488"}, client.lookups)
}

func TestScanNoValidPayload(t *testing.T) {
	resetCmdState(t)

	client := &stubClient{}
	withStubApp(t, client)
	withScanInput(t, "garbage\nmore garbage\n")

	cmd := &ScanCmd{}
	err := cmd.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid ISBN")
	assert.Empty(t, client.lookups)
}
