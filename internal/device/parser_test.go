package device

import (
	"testing"

	"vital_monitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataLine_ValidLine(t *testing.T) {
	vitals, ok := ParseDataLine("A=123,B=98,C=370")
	require.True(t, ok)
	assert.Equal(t, models.VitalSigns{ECG: 123, SpO2: 98, Temp: 370}, vitals)
}

func TestParseDataLine_ToleratesSpaces(t *testing.T) {
	vitals, ok := ParseDataLine("A = 123, B = 98, C = 370")
	require.True(t, ok)
	assert.Equal(t, 123, vitals.ECG)
	assert.Equal(t, 98, vitals.SpO2)
	assert.Equal(t, 370, vitals.Temp)
}

func TestParseDataLine_NegativeECG(t *testing.T) {
	vitals, ok := ParseDataLine("A=-450,B=97,C=365")
	require.True(t, ok)
	assert.Equal(t, -450, vitals.ECG)
}

func TestParseDataLine_MissingFieldRejected(t *testing.T) {
	// Выборка валидна только с полным набором полей
	for _, line := range []string{
		"A=123,B=98",
		"B=98,C=370",
		"A=123,C=370",
		"",
	} {
		_, ok := ParseDataLine(line)
		assert.False(t, ok, "строка %q не должна приниматься", line)
	}
}

func TestParseDataLine_UnknownKeysIgnored(t *testing.T) {
	vitals, ok := ParseDataLine("A=1,B=2,C=3,D=999,X=0")
	require.True(t, ok)
	assert.Equal(t, models.VitalSigns{ECG: 1, SpO2: 2, Temp: 3}, vitals)
}

func TestParseDataLine_GarbageRejected(t *testing.T) {
	for _, line := range []string{
		"hello world",
		"A=abc,B=98,C=370",
		"A:123,B:98,C:370",
	} {
		_, ok := ParseDataLine(line)
		assert.False(t, ok, "строка %q не должна приниматься", line)
	}
}
