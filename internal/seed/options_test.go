package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dexhub/pkg/types"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr error
	}{
		{name: "defaults are valid", mutate: func(o *Options) {}},
		{name: "no limit is valid", mutate: func(o *Options) { o.ImportLimit = 0 }},
		{name: "negative limit", mutate: func(o *Options) { o.ImportLimit = -1 }, wantErr: ErrInvalidImportLimit},
		{name: "relative placeholder", mutate: func(o *Options) { o.PlaceholderURL = "/default.png" }, wantErr: ErrInvalidPlaceholder},
		{name: "empty placeholder", mutate: func(o *Options) { o.PlaceholderURL = "" }, wantErr: ErrInvalidPlaceholder},
		{name: "unknown policy", mutate: func(o *Options) { o.Policy = "merge" }, wantErr: ErrUnknownPolicy},
		{
			name: "default policy needs a vocabulary tag",
			mutate: func(o *Options) {
				o.Policy = PolicyDefault
				o.DefaultType = "shadow"
			},
			wantErr: ErrInvalidDefaultType,
		},
		{
			name: "default policy with valid tag",
			mutate: func(o *Options) {
				o.Policy = PolicyDefault
				o.DefaultType = types.TypeFairy
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyDrop, p)

	p, err = ParsePolicy(" Reject ")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)

	_, err = ParsePolicy("silently-ignore")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Policy = "bogus"
	_, err := New(&failingStore{}, opts)
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
