package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"pmsportal/internal/models/db_models"
	"pmsportal/pkg/utils"
)

// TransactionFilter narrows ListByAccount. Zero value lists every row for the account.
type TransactionFilter struct {
	Types          []db_models.PaymentType
	Statuses       []db_models.PaymentStatus
	ExcludeStatus  []db_models.PaymentStatus
	MissingGateway bool // rows whose gateway identifiers are still null
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *db_models.PaymentTransaction) error
	FindByOrderID(ctx context.Context, orderID string) (*db_models.PaymentTransaction, error)
	FindByOrderAndAccount(ctx context.Context, orderID, nuvamaCode string) (*db_models.PaymentTransaction, error)
	FindByIdentifier(ctx context.Context, identifier string) (*db_models.PaymentTransaction, error)
	SearchLike(ctx context.Context, term string, limit int) ([]db_models.PaymentTransaction, error)
	ListByAccount(ctx context.Context, nuvamaCode string, filter TransactionFilter) ([]db_models.PaymentTransaction, error)
	ListOpenAccounts(ctx context.Context, closed []db_models.PaymentStatus) ([]string, error)
	// UpdateWithVersion applies fields only if the row still carries version, and bumps it.
	UpdateWithVersion(ctx context.Context, orderID string, version int64, fields map[string]interface{}) error
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *db_models.PaymentTransaction) error {
	if txn.Version == 0 {
		txn.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("%w: create transaction %s: %v", utils.ErrDatabaseError, txn.OrderID, err)
	}
	return nil
}

func (r *transactionRepository) FindByOrderID(ctx context.Context, orderID string) (*db_models.PaymentTransaction, error) {
	return r.first(r.db.WithContext(ctx).Where("order_id = ?", orderID))
}

func (r *transactionRepository) FindByOrderAndAccount(ctx context.Context, orderID, nuvamaCode string) (*db_models.PaymentTransaction, error) {
	return r.first(r.db.WithContext(ctx).Where("order_id = ? AND nuvama_code = ?", orderID, nuvamaCode))
}

func (r *transactionRepository) FindByIdentifier(ctx context.Context, identifier string) (*db_models.PaymentTransaction, error) {
	return r.first(r.db.WithContext(ctx).
		Where("order_id = ?", identifier).
		Or("cf_order_id = ?", identifier).
		Or("cf_subscription_id = ?", identifier).
		Or("payment_session_id = ?", identifier).
		Or("cf_payment_id = ?", identifier).
		Order("created_at DESC"))
}

// likeEscaper makes a search term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *transactionRepository) SearchLike(ctx context.Context, term string, limit int) ([]db_models.PaymentTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	pattern := "%" + likeEscaper.Replace(term) + "%"
	var rows []db_models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where(`order_id LIKE ? ESCAPE '\'`, pattern).
		Or(`cf_order_id LIKE ? ESCAPE '\'`, pattern).
		Or(`cf_subscription_id LIKE ? ESCAPE '\'`, pattern).
		Or(`nuvama_code LIKE ? ESCAPE '\'`, pattern).
		Or(`client_name LIKE ? ESCAPE '\'`, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: search transactions: %v", utils.ErrDatabaseError, err)
	}
	return rows, nil
}

func (r *transactionRepository) ListByAccount(ctx context.Context, nuvamaCode string, filter TransactionFilter) ([]db_models.PaymentTransaction, error) {
	q := r.db.WithContext(ctx).Where("nuvama_code = ?", nuvamaCode)
	if len(filter.Types) > 0 {
		q = q.Where("payment_type IN ?", filter.Types)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("payment_status IN ?", filter.Statuses)
	}
	if len(filter.ExcludeStatus) > 0 {
		q = q.Where("payment_status NOT IN ?", filter.ExcludeStatus)
	}
	if filter.MissingGateway {
		q = q.Where(
			"((payment_type = ? AND cf_subscription_id IS NULL) OR (payment_type <> ? AND (cf_order_id IS NULL OR payment_session_id IS NULL)))",
			db_models.PaymentTypeSIP, db_models.PaymentTypeSIP,
		)
	}

	var rows []db_models.PaymentTransaction
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: list transactions for %s: %v", utils.ErrDatabaseError, nuvamaCode, err)
	}
	return rows, nil
}

func (r *transactionRepository) ListOpenAccounts(ctx context.Context, closed []db_models.PaymentStatus) ([]string, error) {
	var codes []string
	q := r.db.WithContext(ctx).Model(&db_models.PaymentTransaction{})
	if len(closed) > 0 {
		q = q.Where("payment_status NOT IN ?", closed)
	}
	if err := q.Distinct().Order("nuvama_code").Pluck("nuvama_code", &codes).Error; err != nil {
		return nil, fmt.Errorf("%w: list open accounts: %v", utils.ErrDatabaseError, err)
	}
	return codes, nil
}

func (r *transactionRepository) UpdateWithVersion(ctx context.Context, orderID string, version int64, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		updates[k] = v
	}
	if canceledAt, ok := updates["canceled_at"]; ok {
		// canceled_at is written once
		updates["canceled_at"] = gorm.Expr("COALESCE(canceled_at, ?)", canceledAt)
	}
	updates["version"] = gorm.Expr("version + 1")
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}

	res := r.db.WithContext(ctx).
		Model(&db_models.PaymentTransaction{}).
		Where("order_id = ? AND version = ?", orderID, version).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("%w: update transaction %s: %v", utils.ErrDatabaseError, orderID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&db_models.PaymentTransaction{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return fmt.Errorf("%w: recheck transaction %s: %v", utils.ErrDatabaseError, orderID, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", utils.ErrTransactionNotFound, orderID)
	}
	return fmt.Errorf("%w: %s", utils.ErrConcurrentUpdate, orderID)
}

func (r *transactionRepository) first(q *gorm.DB) (*db_models.PaymentTransaction, error) {
	var txn db_models.PaymentTransaction
	err := q.First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return &txn, nil
}
