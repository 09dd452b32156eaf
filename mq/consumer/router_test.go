package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	commonConfig "github.com/Xushengqwer/go-common/config"
	"github.com/Xushengqwer/go-common/core"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/forum_service/models/events"
)

func newTestLogger(t *testing.T) *core.ZapLogger {
	t.Helper()
	logger, err := core.NewZapLogger(commonConfig.ZapConfig{})
	require.NoError(t, err)
	return logger
}

func messageWithEnvelope(t *testing.T, eventType string, payload interface{}) kafka.Message {
	t.Helper()
	value, err := events.Encode(eventType, payload)
	require.NoError(t, err)
	return kafka.Message{Topic: "test_queue", Value: value}
}

func TestRouterDispatchesByEventType(t *testing.T) {
	router := NewRouter(newTestLogger(t))

	var gotPayload json.RawMessage
	router.Register("USER_CREATED", func(ctx context.Context, payload json.RawMessage) error {
		gotPayload = payload
		return nil
	})

	msg := messageWithEnvelope(t, "USER_CREATED", map[string]uint64{"user_id": 7})
	require.NoError(t, router.Handle(context.Background(), msg))

	var decoded map[string]uint64
	require.NoError(t, json.Unmarshal(gotPayload, &decoded))
	assert.Equal(t, uint64(7), decoded["user_id"])
}

func TestRouterPropagatesHandlerError(t *testing.T) {
	router := NewRouter(newTestLogger(t))

	wantErr := errors.New("db unavailable")
	router.Register("AI_COMMENT_CREATED", func(ctx context.Context, payload json.RawMessage) error {
		return wantErr
	})

	msg := messageWithEnvelope(t, "AI_COMMENT_CREATED", map[string]string{})
	assert.ErrorIs(t, router.Handle(context.Background(), msg), wantErr)
}

func TestRouterIgnoresUnknownEventType(t *testing.T) {
	router := NewRouter(newTestLogger(t))

	called := false
	router.Register("USER_CREATED", func(ctx context.Context, payload json.RawMessage) error {
		called = true
		return nil
	})

	msg := messageWithEnvelope(t, "SOMETHING_ELSE", map[string]string{})
	// 未注册的类型不算处理失败，消息应被提交而不是反复重试
	assert.NoError(t, router.Handle(context.Background(), msg))
	assert.False(t, called)
}

func TestRouterDropsUndecodableMessage(t *testing.T) {
	router := NewRouter(newTestLogger(t))
	router.Register("USER_CREATED", func(ctx context.Context, payload json.RawMessage) error {
		t.Fatal("不应被调用")
		return nil
	})

	msg := kafka.Message{Topic: "test_queue", Value: []byte("corrupted {{{")}
	assert.NoError(t, router.Handle(context.Background(), msg))
}
