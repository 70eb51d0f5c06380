package revocation

import (
	"context"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdKV etcd 存储所需的接口子集，*clientv3.Client 满足该接口
type EtcdKV interface {
	Grant(ctx context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error)
	Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error)
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
}

// Etcd 基于租约的失效存储，租约到期后键自动删除
type Etcd struct {
	client EtcdKV
	prefix string
}

// NewEtcd 创建 etcd 失效存储，prefix 为空时使用 "/authkit/revoked/"
func NewEtcd(client EtcdKV, prefix string) *Etcd {
	if prefix == "" {
		prefix = "/authkit/revoked/"
	}
	return &Etcd{client: client, prefix: prefix}
}

// Invalidate implements Store。租约以秒为单位，不足一秒向上取整。
func (e *Etcd) Invalidate(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return ErrEmptyTokenID
	}
	if ttl <= 0 {
		return nil
	}
	seconds := int64((ttl + time.Second - 1) / time.Second)

	lease, err := e.client.Grant(ctx, seconds)
	if err != nil {
		return err
	}
	_, err = e.client.Put(ctx, e.prefix+tokenID, "1", clientv3.WithLease(lease.ID))
	return err
}

// IsRevoked implements Store
func (e *Etcd) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	resp, err := e.client.Get(ctx, e.prefix+tokenID, clientv3.WithCountOnly())
	if err != nil {
		return false, err
	}
	return resp.Count > 0, nil
}
