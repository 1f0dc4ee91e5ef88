package rcache

import (
	"encoding/json"
	"fmt"
	"time"
)

// logicalEntry 是包装编码的持久化格式。
// data 为原始 JSON payload，expireTime 为权威的逻辑过期时间；
// Redis 自身的 TTL 不参与过期判断。
type logicalEntry struct {
	Data       json.RawMessage `json:"data"`
	ExpireTime time.Time       `json:"expireTime"`
}

// encodeLogical 将 payload 包装为携带逻辑过期时间的编码。
func encodeLogical(payload []byte, expireAt time.Time) ([]byte, error) {
	raw, err := json.Marshal(logicalEntry{
		Data:       payload,
		ExpireTime: expireAt,
	})
	if err != nil {
		return nil, fmt.Errorf("rcache: encode logical entry: %w", err)
	}
	return raw, nil
}

// decodeLogical 解析包装编码，返回 payload 与逻辑过期时间。
func decodeLogical(raw []byte) ([]byte, time.Time, error) {
	var entry logicalEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %w", ErrEntryCorrupt, err)
	}
	return entry.Data, entry.ExpireTime, nil
}
