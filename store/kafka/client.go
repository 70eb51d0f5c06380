package kafka

import (
	"context"
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"golang.org/x/sync/errgroup"

	"github.com/kochabx/authkit/log"
)

var (
	ErrClientClosed  = errors.New("kafka: client closed")
	ErrInvalidConfig = errors.New("kafka: config is nil")
	ErrEmptyBrokers  = errors.New("kafka: no brokers configured")
)

// Client Kafka 客户端，按主题缓存生产者与消费者
type Client struct {
	config    *Config
	dialer    *kafka.Dialer
	transport *kafka.Transport
	logger    *log.Logger

	mu        sync.RWMutex
	closed    bool
	producers map[string]*kafka.Writer
	consumers map[string]*kafka.Reader
}

// New 创建客户端，不建立连接
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	o := applyOptions(cfg, opts)
	if len(cfg.Brokers) == 0 {
		return nil, ErrEmptyBrokers
	}

	c := &Client{
		config:    cfg,
		logger:    o.logger,
		dialer:    o.dialer,
		producers: make(map[string]*kafka.Writer),
		consumers: make(map[string]*kafka.Reader),
	}
	if c.logger == nil {
		c.logger = log.G
	}
	if c.dialer == nil {
		c.dialer = &kafka.Dialer{Timeout: cfg.Timeout, DualStack: true}
		if m, ok := c.mechanism(); ok {
			c.dialer.SASLMechanism = m
		}
	}
	c.transport = &kafka.Transport{}
	if m, ok := c.mechanism(); ok {
		c.transport.SASL = m
	}
	return c, nil
}

func (c *Client) mechanism() (plain.Mechanism, bool) {
	if c.config.Username == "" {
		return plain.Mechanism{}, false
	}
	return plain.Mechanism{Username: c.config.Username, Password: c.config.Password}, true
}

// Producer 获取主题的同步生产者，不存在时创建
func (c *Client) Producer(topic string) (*kafka.Writer, error) {
	c.mu.RLock()
	w, ok := c.producers[topic]
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrClientClosed
	}
	if ok {
		return w, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	if w, ok := c.producers[topic]; ok {
		return w, nil
	}
	w = &kafka.Writer{
		Addr:                   kafka.TCP(c.config.Brokers...),
		Topic:                  topic,
		Balancer:               c.config.balancer(),
		Transport:              c.transport,
		AllowAutoTopicCreation: c.config.AllowAutoTopicCreation,
	}
	c.producers[topic] = w
	return w, nil
}

// ConsumerGroup 获取主题与消费组的消费者，groupID 为空时按配置的分区消费
func (c *Client) ConsumerGroup(topic, groupID string) (*kafka.Reader, error) {
	key := topic + "-" + groupID

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	if r, ok := c.consumers[key]; ok {
		return r, nil
	}

	cfg := kafka.ReaderConfig{
		Brokers:  c.config.Brokers,
		Topic:    topic,
		MinBytes: c.config.MinBytes,
		MaxBytes: c.config.MaxBytes,
		Dialer:   c.dialer,
	}
	if groupID != "" {
		cfg.GroupID = groupID
	} else {
		cfg.Partition = c.config.Partition
	}
	r := kafka.NewReader(cfg)
	c.consumers[key] = r
	return r, nil
}

// Close 并发关闭全部生产者与消费者，可重复调用
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	producers, consumers := c.producers, c.consumers
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.config.CloseTimeout)
	defer cancel()

	eg, _ := errgroup.WithContext(ctx)
	for _, w := range producers {
		eg.Go(w.Close)
	}
	for _, r := range consumers {
		eg.Go(r.Close)
	}

	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()
	select {
	case err := <-done:
		c.logger.Debug().Int("producers", len(producers)).Int("consumers", len(consumers)).Msg("kafka client closed")
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
