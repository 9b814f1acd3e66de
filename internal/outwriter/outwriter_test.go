package outwriter

import (
	"testing"

	"github.com/huangsam/fosdash/internal/contract"
	"github.com/stretchr/testify/assert"
)

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		fixedWidth int
		expected   int
	}{
		{name: "wide terminal is capped", width: 200, fixedWidth: 60, expected: maxNameWidth},
		{name: "narrow terminal keeps minimum", width: 60, fixedWidth: 60, expected: minNameWidth},
		{name: "room in between", width: 100, fixedWidth: 60, expected: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width}
			assert.Equal(t, tt.expected, getMaxTableNameWidth(cfg, tt.fixedWidth))
		})
	}
}

func TestTerminalWidthOverride(t *testing.T) {
	assert.Equal(t, 132, terminalWidth(&contract.Config{Width: 132}))

	// Without an override the width is detected or defaulted, never zero.
	assert.Positive(t, terminalWidth(&contract.Config{}))
}

func TestNewOutWriter(t *testing.T) {
	assert.NotNil(t, NewOutWriter())
}
