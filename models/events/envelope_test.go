package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := PostCreatedPayload{
		PostID:    42,
		Title:     "第一篇帖子",
		Content:   "正文内容",
		FilePaths: []string{"http://files/1.png"},
	}

	data, err := Encode("POST_CREATED", payload)
	require.NoError(t, err)

	envelope, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "POST_CREATED", envelope.Type)

	var decoded PostCreatedPayload
	require.NoError(t, json.Unmarshal(envelope.Payload, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestDecodeRejectsInvalidJSON(t *testing.T) {
	_, err := Decode([]byte("not json at all"))
	assert.Error(t, err)
}

func TestDecodeRejectsMissingType(t *testing.T) {
	_, err := Decode([]byte(`{"payload":{"post_id":1}}`))
	assert.Error(t, err)
}
