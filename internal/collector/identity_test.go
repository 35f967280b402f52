package collector

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func TestHistoryID(t *testing.T) {
	id := HistoryID("payments", "scenarios/login.yaml")

	sum := blake2b.Sum256([]byte("payments_scenarios/login.yaml"))
	assert.Equal(t, hex.EncodeToString(sum[:]), id)
	assert.Len(t, id, 64)

	assert.Equal(t, id, HistoryID("payments", "scenarios/login.yaml"))
	assert.NotEqual(t, id, HistoryID("", "scenarios/login.yaml"))
	assert.NotEqual(t, id, HistoryID("payments", "scenarios/logout.yaml"))
}

func TestStatusDetails(t *testing.T) {
	assert.Nil(t, statusDetails(nil))

	d := statusDetails(&ErrorInfo{})
	require.NotNil(t, d)
	assert.Equal(t, "Error", d.Message)

	d = statusDetails(&ErrorInfo{Type: "KeyError", Message: "'id'", Trace: "tb"})
	assert.Equal(t, "'id'", d.Message)
	assert.Equal(t, "tb", d.Trace)
}

func TestFormatScope(t *testing.T) {
	assert.Empty(t, formatScope(nil))
	assert.Equal(t, "    html:\n\"<b>\"\n\n", formatScope(map[string]any{"html": "<b>"}))
	assert.Contains(t, formatScope(map[string]any{"ch": make(chan int)}), "(chan int)")
}
