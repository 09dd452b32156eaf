package consumer

import (
	"context"
	"encoding/json"

	"github.com/Xushengqwer/go-common/core"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Xushengqwer/forum_service/models/events"
)

// HandlerFunc 处理一种事件类型的载荷。
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// Router 按信封中的事件类型将消息分发给对应的处理函数。
// 实现 MessageHandler 接口，一个队列上的多种事件共享一个消费者。
type Router struct {
	handlers map[string]HandlerFunc
	logger   *core.ZapLogger
}

// NewRouter 创建一个空的事件路由器。
func NewRouter(logger *core.ZapLogger) *Router {
	return &Router{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
	}
}

// Register 注册事件类型的处理函数，重复注册时后注册的覆盖先注册的。
func (r *Router) Register(eventType string, handler HandlerFunc) {
	r.handlers[eventType] = handler
}

// Handle 解析信封并分发。
// 无法解析的消息与未注册的事件类型都视为不可恢复，记录后返回 nil 以便提交位点。
func (r *Router) Handle(ctx context.Context, msg kafka.Message) error {
	envelope, err := events.Decode(msg.Value)
	if err != nil {
		r.logger.Error("消息信封解析失败，已丢弃",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return nil
	}

	handler, ok := r.handlers[envelope.Type]
	if !ok {
		r.logger.Warn("收到未注册的事件类型，已忽略",
			zap.String("topic", msg.Topic),
			zap.String("eventType", envelope.Type),
			zap.Int64("offset", msg.Offset),
		)
		return nil
	}

	return handler(ctx, envelope.Payload)
}
