package server

import (
	"context"
	"slices"

	"github.com/kochabx/authkit/app"
	"github.com/kochabx/authkit/log"
	"github.com/kochabx/authkit/store/db"
	"github.com/kochabx/authkit/store/etcd"
	"github.com/kochabx/authkit/store/kafka"
	"github.com/kochabx/authkit/store/mongo"
	"github.com/kochabx/authkit/store/redis"
	khttp "github.com/kochabx/authkit/transport/http"
)

// resources 按需建立的基础设施连接。
// 每个连接只建立一次，同时登记健康检查与关闭函数。
type resources struct {
	cfg    *Config
	logger *log.Logger

	closers []app.CloseFunc
	checks  []khttp.HealthCheck

	db    *db.Client
	mongo *mongo.Client
	redis *redis.Client
	etcd  *etcd.Client
	kafka *kafka.Client
}

func newResources(cfg *Config, logger *log.Logger) *resources {
	return &resources{cfg: cfg, logger: logger}
}

func (r *resources) onClose(name string, fn func(context.Context) error) {
	r.closers = append(r.closers, app.CloseFunc{Name: name, Fn: fn})
}

func (r *resources) check(name string, fn func(context.Context) error) {
	r.checks = append(r.checks, khttp.HealthCheck{Name: name, Check: fn})
}

func (r *resources) database(ctx context.Context) (*db.Client, error) {
	if r.db != nil {
		return r.db, nil
	}
	dc, err := r.cfg.Database.DriverConfig()
	if err != nil {
		return nil, err
	}
	c, err := db.New(ctx, dc,
		db.WithLogger(r.logger),
		db.WithSlowQuery(r.cfg.Diagnostics.SlowQuery),
	)
	if err != nil {
		return nil, err
	}
	r.db = c
	r.check("database", c.Ping)
	r.onClose("database", func(context.Context) error { return c.Close() })
	return c, nil
}

func (r *resources) mongoClient(ctx context.Context) (*mongo.Client, error) {
	if r.mongo != nil {
		return r.mongo, nil
	}
	c, err := mongo.New(ctx, &r.cfg.Mongo, mongo.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}
	r.mongo = c
	r.check("mongo", c.Ping)
	r.onClose("mongo", c.Close)
	return c, nil
}

func (r *resources) redisClient(ctx context.Context) (*redis.Client, error) {
	if r.redis != nil {
		return r.redis, nil
	}
	c, err := redis.New(ctx, &r.cfg.Redis, r.redisOptions()...)
	if err != nil {
		return nil, err
	}
	r.redis = c
	r.check("redis", c.Ping)
	r.onClose("redis", func(context.Context) error { return c.Close() })
	return c, nil
}

func (r *resources) redisOptions() []redis.Option {
	d := r.cfg.Diagnostics
	opts := []redis.Option{redis.WithLogger(r.logger)}
	if d.RedisDebug {
		opts = append(opts, redis.WithDebug(d.RedisSlow))
	}
	if d.RedisTracing {
		opts = append(opts, redis.WithTracing())
	}
	if d.RedisMetrics {
		opts = append(opts, redis.WithMetrics())
	}
	return opts
}

func (r *resources) etcdClient(ctx context.Context) (*etcd.Client, error) {
	if r.etcd != nil {
		return r.etcd, nil
	}
	c, err := etcd.New(ctx, &r.cfg.Etcd, etcd.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}
	r.etcd = c
	r.check("etcd", c.Ping)
	r.onClose("etcd", func(context.Context) error { return c.Close() })
	return c, nil
}

func (r *resources) kafkaClient() (*kafka.Client, error) {
	if r.kafka != nil {
		return r.kafka, nil
	}
	c, err := kafka.New(&r.cfg.Kafka, kafka.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}
	r.kafka = c
	r.onClose("kafka", func(context.Context) error { return c.Close() })
	return c, nil
}

// close 逆序执行全部关闭函数，返回第一个错误
func (r *resources) close(ctx context.Context) error {
	var first error
	for _, c := range slices.Backward(r.closers) {
		if err := c.Fn(ctx); err != nil {
			r.logger.Warn().Err(err).Str("name", c.Name).Msg("close failed")
			if first == nil {
				first = err
			}
		}
	}
	r.closers = nil
	return first
}
