package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leighmacdonald/steamid/v4/steamid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at an empty temp dir so no
// real config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestRead_Defaults(t *testing.T) {
	dir := isolate(t)

	conf, err := Read(New(), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".csmatchstats", "matches.db"), conf.DB)
	assert.Equal(t, "warn", conf.Log.Level)
	assert.Equal(t, 12, conf.Match.HalfLength)
	assert.Equal(t, 5*time.Second, conf.Match.TradeWindow)

	id, err := conf.ObserverID()
	require.NoError(t, err)
	assert.False(t, id.Valid())
}

func TestRead_FileAndEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db: /tmp/cs.db
log:
  level: debug
match:
  half_length: 15
  trade_window: 3s
observer: "76561198000000001"
`), 0o600))
	t.Setenv("CSMATCHSTATS_MATCH_HALF_LENGTH", "8")

	conf, err := Read(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cs.db", conf.DB)
	assert.Equal(t, "debug", conf.Log.Level)
	assert.Equal(t, 8, conf.Match.HalfLength, "environment wins over the file")
	assert.Equal(t, 3*time.Second, conf.Match.TradeWindow)

	id, err := conf.ObserverID()
	require.NoError(t, err)
	assert.Equal(t, steamid.New(int64(76561198000000001)), id)
}

func TestRead_Invalid(t *testing.T) {
	dir := isolate(t)

	_, err := Read(New(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "a named config file must exist")

	t.Setenv("CSMATCHSTATS_MATCH_HALF_LENGTH", "0")
	_, err = Read(New(), "")
	assert.Error(t, err)

	t.Setenv("CSMATCHSTATS_MATCH_HALF_LENGTH", "12")
	t.Setenv("CSMATCHSTATS_OBSERVER", "not-a-steam-id")
	_, err = Read(New(), "")
	assert.ErrorIs(t, err, ErrInvalidObserver)
}
