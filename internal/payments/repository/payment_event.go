package repository

import (
	"context"
	"fmt"

	paymentserrors "hirfa/internal/payments/errors"
	"hirfa/pkg/config"
	mongotx "hirfa/pkg/db/mongo"
	"hirfa/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "Payment_events"

// PaymentEventRepository records applied payment outcomes. The document id
// is the idempotency key.
type PaymentEventRepository interface {
	Record(ctx context.Context, event *model.PaymentEvent) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoPaymentEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoPaymentEventRepository(cfg *config.Config) PaymentEventRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPaymentEventRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// Record returns ErrAlreadyApplied when the key exists.
func (r *mongoPaymentEventRepository) Record(ctx context.Context, event *model.PaymentEvent) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	event.CreatedAt = mongotx.Now()

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", paymentserrors.ErrAlreadyApplied, event.ID)
		}
		return fmt.Errorf("failed to record payment event: %w", err)
	}
	return nil
}

func (r *mongoPaymentEventRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
