package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/mmeshcher/checkout-system/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore предоставляет доступ к хранилищу заказов в PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore создаёт хранилище и инициализирует схему БД через миграции.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}

	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry повторяет операцию при временных ошибках БД с экспоненциальной задержкой.
func (s *PostgresStore) withRetry(ctx context.Context, fn func() error) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn()
		if err == nil {
			return nil
		}
		if isRetriable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func isRetriable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}

	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// CreateOrder сохраняет новый заказ в статусе pending и возвращает присвоенный идентификатор.
func (s *PostgresStore) CreateOrder(ctx context.Context, draft OrderDraft) (int64, error) {
	var id int64
	err := s.withRetry(ctx, func() error {
		return s.pool.QueryRow(ctx,
			`INSERT INTO orders (product_id, product_name, price, customer_name, customer_email, payment_ref, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			draft.ProductID, draft.ProductName, draft.Price,
			draft.CustomerName, draft.CustomerEmail, draft.PaymentRef,
			string(model.OrderStatusPending),
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

// GetOrder возвращает полную запись заказа.
func (s *PostgresStore) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, product_id, product_name, price, customer_name, customer_email,
		        payment_ref, status, created_at, notification_ref
		 FROM orders
		 WHERE id = $1`,
		id,
	)

	var o model.Order
	var status string
	err := row.Scan(&o.ID, &o.ProductID, &o.ProductName, &o.Price,
		&o.CustomerName, &o.CustomerEmail, &o.PaymentRef,
		&status, &o.CreatedAt, &o.NotificationRef)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}
	o.Status = model.OrderStatus(status)

	return &o, nil
}

// GetOrderStatus возвращает текущий статус заказа.
func (s *PostgresStore) GetOrderStatus(ctx context.Context, id int64) (model.OrderStatus, error) {
	var status string
	err := s.pool.QueryRow(ctx,
		`SELECT status FROM orders WHERE id = $1`,
		id,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrOrderNotFound
		}
		return "", fmt.Errorf("select order status: %w", err)
	}
	return model.OrderStatus(status), nil
}

// SetNotificationRef сохраняет идентификатор отправленного уведомления.
func (s *PostgresStore) SetNotificationRef(ctx context.Context, id int64, ref int64) error {
	var cmdTag pgconn.CommandTag
	err := s.withRetry(ctx, func() error {
		var execErr error
		cmdTag, execErr = s.pool.Exec(ctx,
			`UPDATE orders SET notification_ref = $2 WHERE id = $1`,
			id, ref,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("update notification ref: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// SetOrderStatus переводит заказ в конечный статус. Обновление условное:
// строка меняется только пока заказ в статусе pending, поэтому конечный
// статус не может быть перезаписан конкурентным решением оператора.
func (s *PostgresStore) SetOrderStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	if !status.IsTerminal() {
		return fmt.Errorf("status %q is not terminal", status)
	}

	var cmdTag pgconn.CommandTag
	err := s.withRetry(ctx, func() error {
		var execErr error
		cmdTag, execErr = s.pool.Exec(ctx,
			`UPDATE orders SET status = $2 WHERE id = $1 AND status = $3`,
			id, string(status), string(model.OrderStatusPending),
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if cmdTag.RowsAffected() == 1 {
		return nil
	}

	// Строка не изменилась: либо заказа нет, либо статус уже конечный.
	if _, err := s.GetOrderStatus(ctx, id); err != nil {
		return err
	}
	return ErrInvalidTransition
}
