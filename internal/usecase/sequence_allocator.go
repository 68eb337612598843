package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	repo "canteen/internal/repository"
)

const defaultAllocateAttempts = 3

// SequenceAllocator は店舗・日ごとの注文番号を払い出す。
// DB側は1文のupsertで原子的に+1し、プロセス内でもキーごとに直列化する。
type SequenceAllocator struct {
	seqs     repo.SequenceRepository
	locks    *keyedMutex
	attempts int
}

func NewSequenceAllocator(seqs repo.SequenceRepository) *SequenceAllocator {
	return &SequenceAllocator{
		seqs:     seqs,
		locks:    newKeyedMutex(),
		attempts: defaultAllocateAttempts,
	}
}

// AllocateNext は (scopeKey, dayKey) の次の番号を返す。1から始まる。
func (a *SequenceAllocator) AllocateNext(ctx context.Context, scopeKey, dayKey string) (int64, error) {
	scopeKey = strings.TrimSpace(scopeKey)
	dayKey = strings.TrimSpace(dayKey)
	if scopeKey == "" || dayKey == "" {
		return 0, NewHTTPError(http.StatusBadRequest, "invalid sequence key")
	}

	unlock := a.locks.Lock(scopeKey + "/" + dayKey)
	defer unlock()

	for attempt := 0; attempt < a.attempts; attempt++ {
		n, err := a.seqs.Increment(ctx, scopeKey, dayKey)
		if err == nil {
			return n, nil
		}
		//初回作成が他プロセスとぶつかった場合だけやり直す
		if !errors.Is(err, repo.ErrDuplicate) {
			return 0, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if ctx.Err() != nil {
			break
		}
	}

	return 0, NewHTTPError(http.StatusServiceUnavailable, "order number unavailable, try again")
}
