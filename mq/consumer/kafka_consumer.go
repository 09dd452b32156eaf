package consumer

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	appConfig "github.com/Xushengqwer/forum_service/config"
	"github.com/Xushengqwer/forum_service/metrics"
)

// MessageHandler 定义消息处理器接口。
// 返回 nil 表示处理成功，消息可以提交；返回错误则触发重试。
type MessageHandler interface {
	Handle(ctx context.Context, msg kafka.Message) error
}

// messageSource 抽象消息的拉取与位点提交，kafka.Reader 是生产实现。
type messageSource interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer 定义 Kafka 消费者结构。
// 采用手动提交：消息处理成功后才提交位点，进程崩溃时未确认的消息会被重新投递。
type Consumer struct {
	reader         messageSource
	handler        MessageHandler
	logger         *core.ZapLogger
	topic          string
	maxRetries     int
	handlerTimeout time.Duration
	retryBackoff   time.Duration
}

// NewConsumer 创建 Kafka Consumer 实例。
func NewConsumer(cfg *appConfig.KafkaConfig, topicName string, handler MessageHandler, logger *core.ZapLogger) (*Consumer, error) {
	if topicName == "" {
		return nil, errors.New("kafka topic 名称不能为空")
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers 配置不能为空")
	}

	logger.Info("初始化 Kafka 消费者",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", topicName),
		zap.String("group_id", cfg.ConsumerGroupID))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topicName,
		GroupID:  cfg.ConsumerGroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
		MaxWait:  3 * time.Second,
	})

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	handlerTimeout := time.Duration(cfg.HandlerTimeoutSeconds) * time.Second
	if handlerTimeout <= 0 {
		handlerTimeout = 30 * time.Second
	}

	return &Consumer{
		reader:         reader,
		handler:        handler,
		logger:         logger,
		topic:          topicName,
		maxRetries:     maxRetries,
		handlerTimeout: handlerTimeout,
		retryBackoff:   time.Second,
	}, nil
}

// Start 启动消费者循环来读取和处理消息。
// 阻塞直到 ctx 取消或 Reader 关闭。
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info("Kafka 消费者已启动", zap.String("topic", c.topic))
	defer c.logger.Info("Kafka 消费者已停止", zap.String("topic", c.topic))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				c.logger.Warn("消费者读取循环退出", zap.String("topic", c.topic), zap.Error(err))
				return
			}
			c.logger.Error("读取 Kafka 消息失败", zap.String("topic", c.topic), zap.Error(err))
			time.Sleep(1 * time.Second)
			continue
		}

		c.processMessage(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			// 提交失败时消息会被重新投递，处理器需保证幂等
			c.logger.Error("提交 Kafka 位点失败",
				zap.String("topic", c.topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// processMessage 带重试地处理单条消息。
// 重试耗尽后记录死信并放弃，保证消费循环不被单条坏消息卡死。
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.MessageRetries.WithLabelValues(c.topic).Inc()
			backoff := time.Duration(attempt) * c.retryBackoff
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}

		handleCtx, cancel := context.WithTimeout(ctx, c.handlerTimeout)
		lastErr = c.handler.Handle(handleCtx, msg)
		cancel()

		if lastErr == nil {
			return
		}

		c.logger.Error("处理 Kafka 消息时发生错误",
			zap.Error(lastErr),
			zap.String("topic", c.topic),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt+1),
		)
	}

	metrics.DeadLetteredMessages.WithLabelValues(c.topic).Inc()
	c.logger.Error("消息重试次数耗尽，已放弃处理",
		zap.String("topic", c.topic),
		zap.Int64("offset", msg.Offset),
		zap.Int("maxRetries", c.maxRetries),
		zap.Error(lastErr),
	)
}

// Close 关闭 Kafka Reader。
func (c *Consumer) Close() error {
	c.logger.Info("正在关闭 Kafka 消费者...", zap.String("topic", c.topic))
	if err := c.reader.Close(); err != nil {
		c.logger.Error("关闭 Kafka Reader 失败", zap.Error(err), zap.String("topic", c.topic))
		return err
	}
	c.logger.Info("Kafka 消费者已成功关闭", zap.String("topic", c.topic))
	return nil
}
