package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/makerspace-reservations/pkg/dbmetrics"
)

const (
	// DefaultMaxRetries количество повторов сериализуемой транзакции
	DefaultMaxRetries = 5

	// DefaultBaseDelay базовая задержка между повторами
	DefaultBaseDelay = 10 * time.Millisecond
)

// SQLSTATE коды, при которых транзакцию можно безопасно повторить
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// TransactionManager управляет транзакциями и кладет их в контекст,
// чтобы репозитории подхватывали транзакцию через dbmetrics.GetExecutor
type TransactionManager struct {
	db         dbmetrics.TxBeginner
	maxRetries int
	baseDelay  time.Duration
	sleep      func(time.Duration)
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db dbmetrics.TxBeginner) *TransactionManager {
	return &TransactionManager{
		db:         db,
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		sleep:      time.Sleep,
	}
}

// WithRetryPolicy переопределяет политику повторов (используется в тестах)
func (m *TransactionManager) WithRetryPolicy(maxRetries int, baseDelay time.Duration) *TransactionManager {
	m.maxRetries = maxRetries
	m.baseDelay = baseDelay
	return m
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, nil, fn)
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

// DoSerializable выполняет fn в транзакции SERIALIZABLE
// При ошибках сериализации (40001) и дедлоках (40P01) транзакция повторяется целиком
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var err error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			m.sleep(m.backoff(attempt))
		}

		err = m.run(ctx, opts, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}

		if ctx.Err() != nil {
			return err
		}
	}

	return fmt.Errorf("%w: %v", ErrRetriesExhausted, err)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов переиспользует уже открытую транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBeginTransaction, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w: %v (rollback: %v)", ErrRollback, err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}

	return nil
}

// backoff квадратичная задержка с джиттером
func (m *TransactionManager) backoff(attempt int) time.Duration {
	delay := m.baseDelay * time.Duration(attempt*attempt)
	if m.baseDelay <= 0 {
		return 0
	}
	return delay + time.Duration(rand.Int63n(int64(m.baseDelay)))
}

// IsRetryable проверяет, что ошибка вызвана конфликтом сериализации или дедлоком
// Репозитории оборачивают ошибки драйвера через %v, поэтому помимо errors.As
// проверяется и текст ошибки
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
	}

	msg := err.Error()
	return strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "deadlock detected")
}
