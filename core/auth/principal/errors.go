package principal

import "errors"

var (
	// ErrInvalidRecord key 或 username 为空
	ErrInvalidRecord = errors.New("principal: key and username are required")
	// ErrDuplicate key、username 或 email 已存在
	ErrDuplicate = errors.New("principal: duplicate principal")
)
