package repository

import "errors"

var ErrNotFound = errors.New("not found")

// 一意制約にぶつかった（同時作成など）。呼び出し側でリトライする。
var ErrDuplicate = errors.New("duplicate key")
