package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidesmith/slidesmith-api/internal/store"
	"github.com/slidesmith/slidesmith-api/internal/task"
)

func TestNewServiceError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "nil error returns nil",
			err:  nil,
			want: nil,
		},
		{
			name: "store project not found maps to sentinel",
			err:  fmt.Errorf("get: %w", store.ErrProjectNotFound),
			want: ErrProjectNotFound,
		},
		{
			name: "store task not found maps to sentinel",
			err:  fmt.Errorf("get: %w", store.ErrTaskNotFound),
			want: ErrTaskNotFound,
		},
		{
			name: "live execution conflict maps to sentinel",
			err:  fmt.Errorf("submit: %w", task.ErrTaskAlreadyRunning),
			want: ErrTaskConflict,
		},
		{
			name: "missing prompt passes through",
			err:  ErrNoIdeaPrompt,
			want: ErrNoIdeaPrompt,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := NewServiceError("test_op", "test message", tc.err)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}

	t.Run("unknown error is wrapped with context", func(t *testing.T) {
		t.Parallel()

		underlying := errors.New("connection reset")
		got := NewServiceError("list_projects", "failed to list projects", underlying)

		var svcErr *ServiceError
		require.ErrorAs(t, got, &svcErr)
		assert.Equal(t, "list_projects", svcErr.Operation)
		assert.Equal(t, "failed to list projects", svcErr.Message)
		assert.ErrorIs(t, got, underlying)
		assert.Contains(t, got.Error(), "service list_projects failed")
	})
}

func TestServiceErrorMessage(t *testing.T) {
	t.Parallel()

	withCause := &ServiceError{Operation: "get_task", Message: "failed to retrieve task", Err: errors.New("boom")}
	assert.Equal(t, "service get_task failed: failed to retrieve task: boom", withCause.Error())

	withoutCause := &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	assert.Equal(t, "service create_service failed: db cannot be nil", withoutCause.Error())
	assert.Nil(t, withoutCause.Unwrap())
}
