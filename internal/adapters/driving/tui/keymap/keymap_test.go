package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name string
		keys []string
		want []string
	}{
		{"quit", km.Quit.Keys(), []string{"q", "ctrl+c"}},
		{"help", km.Help.Keys(), []string{"?"}},
		{"back", km.Back.Keys(), []string{"esc"}},
		{"up", km.Up.Keys(), []string{"up", "k"}},
		{"down", km.Down.Keys(), []string{"down", "j"}},
		{"switch", km.Switch.Keys(), []string{"tab"}},
		{"sync", km.Sync.Keys(), []string{"s"}},
		{"refresh", km.Refresh.Keys(), []string{"ctrl+r"}},
		{"retry", km.Retry.Keys(), []string{"r"}},
		{"discard", km.Discard.Keys(), []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.keys)
		})
	}
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.ShortHelp()

	require.Len(t, bindings, 4)
	assert.Equal(t, "sync now", bindings[0].Help().Desc)
}

func TestAbandonedHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.AbandonedHelp()

	require.Len(t, bindings, 4)
	assert.Equal(t, "retry", bindings[0].Help().Desc)
	assert.Equal(t, "discard", bindings[1].Help().Desc)
}

func TestFullHelp(t *testing.T) {
	km := DefaultKeyMap()

	groups := km.FullHelp()

	require.Len(t, groups, 4)
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	assert.Equal(t, 10, total)
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("s", km.Sync))
	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.False(t, Matches("enter", km.Sync))
}
