package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindAndCodeExtraction(t *testing.T) {
	err := Conflict(CodeDuplicateRequest, "friend request already pending")

	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, CodeDuplicateRequest, CodeOf(err))
	assert.Equal(t, "friend request already pending", MessageOf(err))
}

func TestWrappedErrorStillClassified(t *testing.T) {
	inner := NotFound("user not found")
	wrapped := fmt.Errorf("load profile: %w", inner)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
	assert.Equal(t, "user not found", MessageOf(wrapped))
}

func TestUnknownErrorFallback(t *testing.T) {
	err := errors.New("dial tcp: connection refused")

	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Equal(t, "", CodeOf(err))
	// 底层错误细节不对外透出
	assert.Equal(t, "internal error", MessageOf(err))
}

func TestTransientKeepsCause(t *testing.T) {
	cause := errors.New("driver: bad connection")
	err := Transient("storage unavailable", cause)

	assert.Equal(t, KindTransient, KindOf(err))
	assert.ErrorIs(t, err, cause)
	// 对外消息不包含底层原因
	assert.Equal(t, "storage unavailable", MessageOf(err))
	// 日志用的完整串包含原因
	assert.Contains(t, err.Error(), "bad connection")
}
