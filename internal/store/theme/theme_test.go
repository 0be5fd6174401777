package theme

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToggle(t *testing.T) {
	require.Equal(t, Dark, Light.Toggle())
	require.Equal(t, Light, Dark.Toggle())
	require.Equal(t, Light, Light.Toggle().Toggle())
}

func TestParse(t *testing.T) {
	require.Equal(t, Light, Parse(""))
	require.Equal(t, Light, Parse("sepia"))
	require.Equal(t, Dark, Parse(" DARK "))
	require.Equal(t, Default, Parse("light"))
}

func TestToggleIcon(t *testing.T) {
	require.Equal(t, "🌙", Light.ToggleIcon())
	require.Equal(t, "☀️", Dark.ToggleIcon())
	require.True(t, Dark.IsDark())
	require.Equal(t, "light", Theme("").String())
}
