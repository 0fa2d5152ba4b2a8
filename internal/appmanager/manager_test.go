package appmanager

import (
	"path/filepath"
	"testing"

	"LowesMerge/api"
	"LowesMerge/internal/jobs"
	"LowesMerge/internal/reportstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServiceSequenceSortsByStartOrder(t *testing.T) {
	seq, err := ParseServiceSequence([]byte(`
services:
  - name: gateway
    start_order: 4
    config:
      port: 8081
  - name: logger
    start_order: 1
  - name: reportstore
    start_order: 2
    config:
      ttl: 30m
`))
	require.NoError(t, err)
	require.Len(t, seq, 3)
	assert.Equal(t, []string{"logger", "reportstore", "gateway"}, []string{seq[0].Name, seq[1].Name, seq[2].Name})
	assert.Equal(t, 8081, seq[2].Config["port"])

	_, err = ParseServiceSequence([]byte("services: ["))
	assert.Error(t, err)
}

func TestAutoRegisterServicesSharesState(t *testing.T) {
	state = shared{}
	root := t.TempDir()
	am := NewAppManager()
	err := am.AutoRegisterServices([]ServiceConfig{
		{Name: "reportstore", Config: map[string]interface{}{"ttl": "1h"}},
		{Name: "inbox", Config: map[string]interface{}{
			"inbox_dir":  filepath.Join(root, "in"),
			"outbox_dir": filepath.Join(root, "out"),
		}},
		{Name: "gateway"},
		{Name: "billing"},
	})
	require.NoError(t, err)

	store, ok := am.GetServiceByName("reportstore").(*reportstore.Store)
	require.True(t, ok)
	assert.Same(t, store, state.reports)
	assert.IsType(t, &jobs.InboxService{}, am.GetServiceByName("inbox"))
	assert.IsType(t, &api.GatewayService{}, am.GetServiceByName("gateway"))
	assert.Nil(t, am.GetServiceByName("billing"))
}

func TestAutoRegisterServicesRejectsBadLookupFile(t *testing.T) {
	state = shared{}
	am := NewAppManager()
	err := am.AutoRegisterServices([]ServiceConfig{
		{Name: "gateway", Config: map[string]interface{}{"lookup_file": filepath.Join(t.TempDir(), "missing.yaml")}},
	})
	assert.ErrorContains(t, err, "build service gateway")
}
