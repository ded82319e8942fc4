package interactive

import (
	"context"
	"errors"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
)

func TestConfirmerAdapter(t *testing.T) {
	tests := []struct {
		name    string
		result  error
		want    bool
		wantErr string
	}{
		{name: "yes", want: true},
		{name: "no", result: promptui.ErrAbort},
		{name: "interrupted", result: promptui.ErrInterrupt, wantErr: "cancelled"},
		{name: "broken terminal", result: errors.New("EOF"), wantErr: "prompt failed: EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfirmerAdapter(&config.RuntimeConfig{})
			var label string
			c.run = func(p *promptui.Prompt) (string, error) {
				label = p.Label.(string)
				assert.True(t, p.IsConfirm)
				return "", tt.result
			}

			ok, err := c.Confirm(context.Background(), "Run 5 steps?")
			assert.Equal(t, "Run 5 steps?", label)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	t.Run("non-interactive", func(t *testing.T) {
		c := NewConfirmerAdapter(&config.RuntimeConfig{NonInteractive: true})
		c.run = func(*promptui.Prompt) (string, error) {
			t.Fatal("prompt should not run")
			return "", nil
		}
		_, err := c.Confirm(context.Background(), "Run?")
		assert.ErrorContains(t, err, "--yes")
	})
}
