package producer

import (
	"context"
	"fmt"
	"sync"

	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	appConfig "github.com/Xushengqwer/forum_service/config"
	"github.com/Xushengqwer/forum_service/constant"
	"github.com/Xushengqwer/forum_service/models/events"
)

// Producer 定义消息发布接口，便于服务层在测试中替换实现。
type Producer interface {
	// Publish 将事件封包后发布到指定队列。
	Publish(ctx context.Context, queue string, eventType string, payload interface{}) error
	// SendAICommentRequestEvent 向 AI 评论请求队列发布帖子创建或 @ 提及事件。
	SendAICommentRequestEvent(ctx context.Context, eventType string, payload interface{}) error
	// Close 关闭底层连接。
	Close() error
}

// KafkaProducer Kafka 消息生产者。
// Writer 在首次发布时惰性创建，服务启动不依赖 Kafka 可达。
type KafkaProducer struct {
	mu      sync.Mutex
	writer  *kafka.Writer
	brokers []string
	queues  appConfig.Queues
	logger  *core.ZapLogger
}

// NewKafkaProducer 创建一个新的 Kafka 生产者实例。
func NewKafkaProducer(cfg *appConfig.KafkaConfig, logger *core.ZapLogger) *KafkaProducer {
	return &KafkaProducer{
		brokers: cfg.Brokers,
		queues:  cfg.Queues,
		logger:  logger,
	}
}

// getWriter 惰性创建共享的 Writer。
func (p *KafkaProducer) getWriter() *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer == nil {
		p.writer = &kafka.Writer{
			Addr:                   kafka.TCP(p.brokers...),
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		}
	}
	return p.writer
}

// Publish 将事件编码为 {type, payload} 信封并发布到指定队列。
func (p *KafkaProducer) Publish(ctx context.Context, queue string, eventType string, payload interface{}) error {
	if queue == "" {
		return fmt.Errorf("发布事件 %s 失败: 队列名称为空", eventType)
	}

	value, err := events.Encode(eventType, payload)
	if err != nil {
		p.logger.Error("序列化事件失败",
			zap.String("queue", queue),
			zap.String("eventType", eventType),
			zap.Error(err),
		)
		return fmt.Errorf("序列化事件 %s 失败: %w", eventType, err)
	}

	messageID := uuid.New().String()
	err = p.getWriter().WriteMessages(ctx, kafka.Message{
		Topic: queue,
		Value: value,
		Headers: []kafka.Header{
			{Key: "message_id", Value: []byte(messageID)},
		},
	})
	if err != nil {
		p.logger.Error("发布 Kafka 消息失败",
			zap.String("queue", queue),
			zap.String("eventType", eventType),
			zap.String("messageID", messageID),
			zap.Error(err),
		)
		return fmt.Errorf("发布事件 %s 到队列 %s 失败: %w", eventType, queue, err)
	}

	p.logger.Info("Kafka 消息发布成功",
		zap.String("queue", queue),
		zap.String("eventType", eventType),
		zap.String("messageID", messageID),
	)
	return nil
}

// SendAICommentRequestEvent 向 AI 评论请求队列发布事件。
// - eventType 为 constant.EventTypePostCreated 或 constant.EventTypeCommentMention。
func (p *KafkaProducer) SendAICommentRequestEvent(ctx context.Context, eventType string, payload interface{}) error {
	if eventType != constant.EventTypePostCreated && eventType != constant.EventTypeCommentMention {
		return fmt.Errorf("不支持向 AI 评论请求队列发布事件类型: %s", eventType)
	}
	return p.Publish(ctx, p.queues.AICommentRequest, eventType, payload)
}

// Close 关闭底层 Writer。
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		p.logger.Error("关闭 Kafka Writer 失败", zap.Error(err))
		return err
	}
	p.writer = nil
	return nil
}
