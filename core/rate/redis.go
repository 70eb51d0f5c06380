package rate

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 滑动窗口：有序集合保存窗口内每次请求的时间戳（毫秒）。
// 返回 {allowed, retry_after_ms}
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local window = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
if count < limit then
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window)
	return {1, 0}
end
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local retry = window
if oldest[2] then
	retry = tonumber(oldest[2]) + window - now
end
return {0, retry}
`)

// Redis 基于 Redis 的滑动窗口限流，多实例共享计数。
// Burst 在该实现中不生效，窗口内上限为 Requests。
type Redis struct {
	client redis.Scripter
	prefix string
	cfg    Config
	now    func() time.Time
	seq    func() string
}

// NewRedis 创建 Redis 限流器，prefix 为空时使用 "authkit:rate:"
func NewRedis(client redis.Scripter, prefix string, cfg Config) *Redis {
	if prefix == "" {
		prefix = "authkit:rate:"
	}
	r := &Redis{client: client, prefix: prefix, cfg: cfg, now: time.Now}
	// 多实例同一纳秒写入时成员仍需唯一，否则 ZADD 覆盖而少计一次
	r.seq = func() string { return strconv.FormatInt(r.now().UnixNano(), 36) + "-" + uuid.NewString() }
	return r
}

// Allow implements Limiter
func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	now := r.now()
	res, err := slidingWindow.Run(ctx, r.client,
		[]string{r.prefix + key},
		r.cfg.Window.Milliseconds(), r.cfg.Requests, now.UnixMilli(), r.seq(),
	).Int64Slice()
	if err != nil {
		return Decision{}, err
	}

	d := Decision{Limit: r.cfg.Requests}
	if len(res) > 0 && res[0] == 1 {
		d.Allowed = true
		return d, nil
	}
	if len(res) > 1 {
		d.RetryAfter = time.Duration(res[1]) * time.Millisecond
	}
	return d, nil
}
