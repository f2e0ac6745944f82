package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_ReadMissingFile(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "orders.json"))
	require.NoError(t, err)

	orders, err := store.Read()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(orders))
}

func TestFileStore_WriteReadRoundTrip(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "orders.json"))
	require.NoError(t, err)

	payload := json.RawMessage(`[{"id":1,"customerName":"Marie","status":"new"}]`)
	require.NoError(t, store.Write(payload))

	got, err := store.Read()
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(got))
}

func TestFileStore_WriteRejectsNonArray(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "orders.json"))
	require.NoError(t, err)

	assert.Error(t, store.Write(json.RawMessage(`{"id":1}`)))
	assert.Error(t, store.Write(json.RawMessage(`not json`)))
}

func TestFileStore_CorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Write(json.RawMessage(`[1]`)))

	// a hand-edited file without the envelope reads as empty
	storeB, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(`garbage`), 0o644))
	orders, err := storeB.Read()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(orders))
}
