package config

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transient", TransientProviderError.New("server locked"), true},
		{"wrapped transient", fmt.Errorf("giving up: %w", TransientProviderError.New("server locked")), true},
		{"transient wrapping plain", TransientProviderError.Wrap(errors.New("RESOURCE_BUSY"), "attach"), true},
		{"permanent", PermanentProviderError.New("invalid input"), false},
		{"validation", ValidationError.New("cpu out of range"), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
