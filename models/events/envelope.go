package events

import (
	"encoding/json"
	"fmt"
)

// Envelope 是所有经过消息队列的事件的统一信封结构。
// - 线上格式固定为 {"type": "...", "payload": {...}}，与 AI 服务和身份服务约定一致。
// - Payload 保持原始 JSON，由路由器按 Type 分发后再反序列化为具体事件结构。
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode 将具体事件包装进信封并序列化为消息体。
func Encode(eventType string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化事件载荷失败 (type=%s): %w", eventType, err)
	}
	envelope := Envelope{
		Type:    eventType,
		Payload: payloadBytes,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("序列化事件信封失败 (type=%s): %w", eventType, err)
	}
	return data, nil
}

// Decode 将消息体反序列化为信封。
// - 调用方需自行判断 Type 并解析 Payload。
func Decode(data []byte) (*Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("反序列化事件信封失败: %w", err)
	}
	if envelope.Type == "" {
		return nil, fmt.Errorf("事件信封缺少 type 字段")
	}
	return &envelope, nil
}
