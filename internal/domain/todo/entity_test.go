package todo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    Status
		wantErr error
	}{
		{raw: "", want: StatusNotStarted},
		{raw: "  Done ", want: StatusDone},
		{raw: "in progress", want: StatusInProgress},
		{raw: "TODO", want: StatusTodo},
		{raw: "blocked", wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTodo_Update(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	item := &Todo{ID: "t1", Title: "old", Description: "keep", Status: StatusTodo, CreatedAt: created, UpdatedAt: created}

	title := "new"
	status := StatusDone
	due := created.Add(48 * time.Hour)
	now := created.Add(time.Hour)

	item.Update(&title, nil, &status, &due, now)

	assert.Equal(t, "new", item.Title)
	assert.Equal(t, "keep", item.Description)
	assert.Equal(t, StatusDone, item.Status)
	require.NotNil(t, item.DueTime)
	assert.True(t, item.DueTime.Equal(due))
	assert.Equal(t, now, item.UpdatedAt)
	assert.Equal(t, created, item.CreatedAt)
}

func TestTodo_OwnedBy(t *testing.T) {
	item := &Todo{UserID: "u1"}
	assert.True(t, item.OwnedBy("u1"))
	assert.False(t, item.OwnedBy("u2"))
}
