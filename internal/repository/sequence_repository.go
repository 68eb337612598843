package repository

import "context"

// 日次カウンタの永続化
type SequenceRepository interface {
	// (scopeKey, dayKey) の行がなければ0で作り、+1して新しい値を返す。
	// 1回の原子的な操作として実装すること。
	Increment(ctx context.Context, scopeKey, dayKey string) (int64, error)
}
