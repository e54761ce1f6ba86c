package processing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSpO2(t *testing.T) {
	tests := []struct {
		name     string
		raw      int
		expected int
	}{
		{"ноль от датчика", 0, 0},
		{"отрицательное значение", -5, 0},
		{"нормальная сатурация", 97, 97},
		{"минимальное валидное значение", 1, 1},
		{"сто процентов", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSpO2(tt.raw))
		})
	}
}
