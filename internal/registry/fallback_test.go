package registry_test

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gamebot/internal/mocks"
	"github.com/feral-file/gamebot/internal/registry"
)

func TestFallbackRegistryLoader_Load(t *testing.T) {
	tests := []struct {
		name         string
		setupMocks   func(*mocks.MockFileSystem)
		path         string
		expectedErr  string // Error message to assert, empty means no error expected
		validateFunc func(t *testing.T, reg registry.FallbackRegistry)
	}{
		{
			name: "successful load with scoped and global entries",
			path: "fallback.json",
			setupMocks: func(mockFS *mocks.MockFileSystem) {
				mockFS.
					EXPECT().
					ReadFile("fallback.json").
					Return([]byte(`{"entries": [
						{"dataset": "vote_history", "column": "vote_id", "context": "US37", "from": "US0590", "to": "US0591"},
						{"dataset": "vote_history", "column": "vote_id", "from": "US0590", "to": "US0600"},
						{"dataset": "Challenge_Results", "column": "challenge_id", "from": "12", "to": "13", "note": "renumbered"}
					]}`), nil)
			},
			validateFunc: func(t *testing.T, reg registry.FallbackRegistry) {
				assert.Equal(t, 3, reg.Len())

				to, ok := reg.Lookup("vote_history", "vote_id", "US37", "US0590")
				assert.True(t, ok)
				assert.Equal(t, "US0591", to, "context entry wins")

				to, ok = reg.Lookup("vote_history", "vote_id", "US38", "US0590")
				assert.True(t, ok)
				assert.Equal(t, "US0600", to, "global entry applies to other contexts")

				to, ok = reg.Lookup("challenge_results", "challenge_id", "US01", "12")
				assert.True(t, ok)
				assert.Equal(t, "13", to)

				_, ok = reg.Lookup("vote_history", "voted_out_id", "US37", "US0590")
				assert.False(t, ok)
			},
		},
		{
			name:       "empty path yields an empty registry",
			path:       "",
			setupMocks: func(mockFS *mocks.MockFileSystem) {},
			validateFunc: func(t *testing.T, reg registry.FallbackRegistry) {
				assert.Equal(t, 0, reg.Len())
				_, ok := reg.Lookup("vote_history", "vote_id", "", "x")
				assert.False(t, ok)
			},
		},
		{
			name: "file read error",
			path: "fallback.json",
			setupMocks: func(mockFS *mocks.MockFileSystem) {
				mockFS.EXPECT().ReadFile("fallback.json").Return(nil, assert.AnError)
			},
			expectedErr: "failed to read fallback file",
		},
		{
			name: "invalid JSON",
			path: "fallback.json",
			setupMocks: func(mockFS *mocks.MockFileSystem) {
				mockFS.EXPECT().ReadFile("fallback.json").Return([]byte(`{"entries": [`), nil)
			},
			expectedErr: "failed to parse fallback JSON",
		},
		{
			name: "incomplete entry",
			path: "fallback.json",
			setupMocks: func(mockFS *mocks.MockFileSystem) {
				mockFS.EXPECT().ReadFile("fallback.json").Return([]byte(`{"entries": [{"dataset": "vote_history", "column": "vote_id", "from": "x"}]}`), nil)
			},
			expectedErr: "dataset, column, from and to are required",
		},
		{
			name: "duplicate mapping",
			path: "fallback.json",
			setupMocks: func(mockFS *mocks.MockFileSystem) {
				mockFS.EXPECT().ReadFile("fallback.json").Return([]byte(`{"entries": [
					{"dataset": "vote_history", "column": "vote_id", "from": "x", "to": "a"},
					{"dataset": "vote_history", "column": "vote_id", "from": "x", "to": "b"}
				]}`), nil)
			},
			expectedErr: "duplicate mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockFS := mocks.NewMockFileSystem(ctrl)
			tt.setupMocks(mockFS)

			reg, err := registry.NewFallbackRegistryLoader(mockFS).Load(tt.path)
			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
				assert.Nil(t, reg)
				return
			}
			require.NoError(t, err)
			tt.validateFunc(t, reg)
		})
	}
}
