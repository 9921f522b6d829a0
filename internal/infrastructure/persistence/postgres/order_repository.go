package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elorajewelry/checkout-service/internal/application"
	"github.com/elorajewelry/checkout-service/internal/domain"
)

// OrderRepository is the durable OrderStore implementation. The memory
// store remains the default; this one is selected with
// store.driver=postgres.
type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

var _ application.OrderStore = (*OrderRepository)(nil)

type lineItemRow struct {
	Name       string `json:"name"`
	Variant    string `json:"variant,omitempty"`
	Qty        int    `json:"qty"`
	TotalHaler int64  `json:"total_halers"`
}

type pickupRow struct {
	PointID string `json:"point_id"`
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

type addressRow struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			ref_id, transaction_id, full_name, email, phone, shipping,
			pickup, address, items, total_halers, paid, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	pickup, address, items, err := toRows(order)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query,
		order.RefID,
		order.TransactionID,
		order.Customer.FullName,
		order.Customer.Email,
		order.Customer.Phone,
		string(order.Shipping),
		pickup,
		address,
		items,
		order.Total.MinorUnits(),
		order.Paid,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

func (r *OrderRepository) GetByRef(ctx context.Context, refID string) (*domain.Order, error) {
	return r.findOne(ctx, "ref_id", refID)
}

func (r *OrderRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Order, error) {
	return r.findOne(ctx, "transaction_id", transactionID)
}

// MarkPaid is a single conditional UPDATE, so the at-most-once
// transition holds under concurrent notifications without a
// surrounding transaction.
func (r *OrderRepository) MarkPaid(ctx context.Context, refID string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET paid = TRUE WHERE ref_id = $1 AND paid = FALSE`,
		refID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OrderRepository) findOne(ctx context.Context, column, value string) (*domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT ref_id, transaction_id, full_name, email, phone, shipping,
		       pickup, address, items, total_halers, paid, created_at
		FROM orders WHERE %s = $1
	`, column)

	row := r.db.QueryRow(ctx, query, value)
	return scanOrder(row)
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		refID, transactionID         string
		fullName, email, phone       string
		shipping                     string
		pickupJSON, addressJSON      []byte
		itemsJSON                    []byte
		totalHalers                  int64
		paid                         bool
		createdAt                    time.Time
	)

	err := row.Scan(
		&refID, &transactionID, &fullName, &email, &phone, &shipping,
		&pickupJSON, &addressJSON, &itemsJSON, &totalHalers, &paid, &createdAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, application.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	var pickup *domain.PickupPoint
	if len(pickupJSON) > 0 {
		var p pickupRow
		if err := json.Unmarshal(pickupJSON, &p); err != nil {
			return nil, fmt.Errorf("failed to decode pickup point: %w", err)
		}
		pickup = &domain.PickupPoint{PointID: p.PointID, Name: p.Name, Address: p.Address}
	}

	var address *domain.HomeAddress
	if len(addressJSON) > 0 {
		var a addressRow
		if err := json.Unmarshal(addressJSON, &a); err != nil {
			return nil, fmt.Errorf("failed to decode address: %w", err)
		}
		address = &domain.HomeAddress{Street: a.Street, City: a.City, Zip: a.Zip, Country: a.Country}
	}

	var itemRows []lineItemRow
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &itemRows); err != nil {
			return nil, fmt.Errorf("failed to decode line items: %w", err)
		}
	}
	items := make([]domain.LineItem, 0, len(itemRows))
	for _, it := range itemRows {
		items = append(items, domain.LineItem{
			Name:      it.Name,
			Variant:   it.Variant,
			Quantity:  it.Qty,
			LineTotal: domain.AmountFromMinorUnits(it.TotalHaler),
		})
	}

	return domain.Reconstitute(
		refID,
		transactionID,
		domain.Customer{FullName: fullName, Email: email, Phone: phone},
		domain.ShippingMethod(shipping),
		pickup,
		address,
		items,
		domain.AmountFromMinorUnits(totalHalers),
		paid,
		createdAt,
	), nil
}

func toRows(order *domain.Order) (pickup, address, items []byte, err error) {
	if order.Pickup != nil {
		pickup, err = json.Marshal(pickupRow{
			PointID: order.Pickup.PointID,
			Name:    order.Pickup.Name,
			Address: order.Pickup.Address,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to encode pickup point: %w", err)
		}
	}
	if order.Address != nil {
		address, err = json.Marshal(addressRow{
			Street:  order.Address.Street,
			City:    order.Address.City,
			Zip:     order.Address.Zip,
			Country: order.Address.Country,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to encode address: %w", err)
		}
	}

	itemRows := make([]lineItemRow, 0, len(order.Items))
	for _, it := range order.Items {
		itemRows = append(itemRows, lineItemRow{
			Name:       it.Name,
			Variant:    it.Variant,
			Qty:        it.Quantity,
			TotalHaler: it.LineTotal.MinorUnits(),
		})
	}
	items, err = json.Marshal(itemRows)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode line items: %w", err)
	}

	return pickup, address, items, nil
}
