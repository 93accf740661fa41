package txmanager

import "errors"

var (
	// ErrBeginTransaction возвращается, когда не удалось начать транзакцию
	ErrBeginTransaction = errors.New("txmanager: failed to begin transaction")

	// ErrCommit возвращается при ошибке фиксации транзакции
	ErrCommit = errors.New("txmanager: failed to commit transaction")

	// ErrRollback возвращается при ошибке отката транзакции
	ErrRollback = errors.New("txmanager: failed to rollback transaction")

	// ErrRetriesExhausted возвращается, когда все повторы сериализуемой транзакции исчерпаны
	ErrRetriesExhausted = errors.New("txmanager: serializable retries exhausted")
)
