// Package repository 定义领域仓储接口
// 仓储接口遵循 DDD 原则，定义领域对象的持久化契约
package repository

import (
	"context"

	"github.com/turtacn/crp/internal/domain/models"
)

// UpdateFunc mutates a session copy inside Update.
// Returning an error aborts the update and nothing is written.
type UpdateFunc func(state *models.FormState) error

// SessionRepository 定义表单会话仓储接口
// 实现类：
//   - internal/infrastructure/persistence/memory/session_store.go
//   - internal/infrastructure/persistence/redis/session_store.go
type SessionRepository interface {
	// Get 读取会话快照
	// 返回：
	//   - *models.FormState: 会话的深拷贝，调用方可以随意修改
	//   - error: 会话不存在时返回 session_not_found
	Get(ctx context.Context, id string) (*models.FormState, error)

	// Create 创建一个空闲状态的新会话
	Create(ctx context.Context, id string) (*models.FormState, error)

	// Update 原子地读取、修改并写回会话
	// 同一会话上的并发 Update 串行化执行，fn 可能因冲突被重试
	// 返回：
	//   - *models.FormState: 写回后的会话快照
	Update(ctx context.Context, id string, fn UpdateFunc) (*models.FormState, error)

	// Delete 删除会话，会话不存在时不返回错误
	Delete(ctx context.Context, id string) error

	// Ping 检查存储是否可用
	Ping(ctx context.Context) error
}
