package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvClock(t *testing.T) {
	value, minutes, err := getEnvClock("LENDING_TEST_END_TIME", "17:00")
	require.NoError(t, err)
	assert.Equal(t, "17:00", value)
	assert.Equal(t, 17*60, minutes)

	t.Setenv("LENDING_TEST_END_TIME", " 16:30 ")
	value, minutes, err = getEnvClock("LENDING_TEST_END_TIME", "17:00")
	require.NoError(t, err)
	assert.Equal(t, "16:30", value)
	assert.Equal(t, 16*60+30, minutes)
}

func TestGetEnvClock_Malformed(t *testing.T) {
	for _, bad := range []string{"5pm", "25:00", "17-00", ""} {
		t.Setenv("LENDING_TEST_END_TIME", bad)
		_, _, err := getEnvClock("LENDING_TEST_END_TIME", "17:00")
		assert.Error(t, err, bad)
	}
}
