package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go-stock-ledger/internal/apierror"
	"go-stock-ledger/internal/dto"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	maxTransactionIDLen = 50
	maxReferenceLen     = 100
	maxCreatedByLen     = 100
	maxBatchLen         = 50
)

// decimal(10,2) upper bound
var maxUnitPrice = decimal.New(1, 8)

type MovementService interface {
	CreateMovement(ctx context.Context, req *dto.StockMovementRequest, actor Actor) (*model.Transaction, error)
}

type movementService struct {
	db       *gorm.DB
	products repository.ProductRepository
	stock    repository.StockRepository
	txns     repository.TransactionRepository
	guard    StockGuard
	events   EventPublisher
	now      func() time.Time
}

func NewMovementService(
	db *gorm.DB,
	products repository.ProductRepository,
	stock repository.StockRepository,
	txns repository.TransactionRepository,
	guard StockGuard,
	events EventPublisher,
) MovementService {
	if events == nil {
		events = nopPublisher{}
	}
	return &movementService{
		db:       db,
		products: products,
		stock:    stock,
		txns:     txns,
		guard:    guard,
		events:   events,
		now:      time.Now,
	}
}

// draft is a request that passed the shape checks.
type draft struct {
	header model.Transaction
	items  []draftItem
}

type draftItem struct {
	rawProductID string
	productID    uuid.UUID // Nil when rawProductID is not a UUID
	line         model.TransactionLine
}

// productIDs returns the distinct parsed product ids in ascending order.
func (d *draft) productIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(d.items))
	ids := make([]uuid.UUID, 0, len(d.items))
	for _, it := range d.items {
		if it.productID == uuid.Nil || seen[it.productID] {
			continue
		}
		seen[it.productID] = true
		ids = append(ids, it.productID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// CreateMovement validates a movement in stages and persists header and
// lines atomically. Each stage reports all of its problems and stops the
// pipeline, so a request with a missing quantity never reaches the stock check.
func (s *movementService) CreateMovement(ctx context.Context, req *dto.StockMovementRequest, actor Actor) (*model.Transaction, error) {
	d, err := s.parse(req, actor)
	if err != nil {
		return nil, s.reject(req, err)
	}

	release, err := s.guard.lockProducts(ctx, d.productIDs())
	if err != nil {
		return nil, s.reject(req, err)
	}
	defer release()

	txn := d.buildTransaction()
	if s.guard.inTransaction() {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.verify(ctx, tx, d, s.guard.lockRows()); err != nil {
				return err
			}
			return s.txns.WithTx(tx).Create(ctx, txn)
		})
	} else {
		if err = s.verify(ctx, nil, d, false); err == nil {
			err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				return s.txns.WithTx(tx).Create(ctx, txn)
			})
		}
	}
	if errors.Is(err, repository.ErrDuplicate) {
		// lost a race on the unique index after the checks passed
		err = singleError(apierror.KindDuplicate, "transaction_id", "transaction %s already exists", txn.TransactionID)
	}
	if err != nil {
		return nil, s.reject(req, err)
	}

	log.Info().
		Str("transaction_id", txn.TransactionID).
		Str("type", string(txn.Type)).
		Int("lines", len(txn.Lines)).
		Int64("quantity", txn.TotalQuantity()).
		Str("by", txn.CreatedBy).
		Msg("stock movement created")
	s.publishCreated(ctx, txn, actor)
	return txn, nil
}

func (s *movementService) reject(req *dto.StockMovementRequest, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		log.Warn().
			Str("transaction_id", req.TransactionID).
			Str("kind", string(verr.Kind)).
			Int("problems", len(verr.Errors)).
			Msg("stock movement rejected")
	}
	return err
}

func (d *draft) buildTransaction() *model.Transaction {
	txn := d.header
	txn.Lines = make([]model.TransactionLine, len(d.items))
	for i, it := range d.items {
		txn.Lines[i] = it.line
	}
	return &txn
}

// parse runs the header and per-item shape checks.
func (s *movementService) parse(req *dto.StockMovementRequest, actor Actor) (*draft, error) {
	d := &draft{}
	now := s.now().UTC()

	// header
	c := newCollector(apierror.KindInvalid)
	txID := model.NormalizeCode(req.TransactionID)
	switch {
	case txID == "":
		c.header("transaction_id", "transaction_id is required")
	case len(txID) > maxTransactionIDLen:
		c.header("transaction_id", "transaction_id must be at most %d characters", maxTransactionIDLen)
	}

	txType := model.TransactionType(strings.ToUpper(strings.TrimSpace(req.TransactionType)))
	if txType != model.TxIn && txType != model.TxOut {
		c.header("transaction_type", "transaction_type must be IN or OUT")
	}

	txDate := now
	if raw := strings.TrimSpace(req.TransactionDate); raw != "" {
		parsed, err := ParseTimestamp(raw)
		switch {
		case err != nil:
			c.header("transaction_date", "transaction_date %q is not a valid date", raw)
		case parsed.After(now):
			c.header("transaction_date", "transaction_date cannot be in the future")
		default:
			txDate = parsed.UTC()
		}
	}

	createdBy := strings.TrimSpace(req.CreatedBy)
	if createdBy == "" {
		createdBy = actor.Identifier()
	}
	switch {
	case createdBy == "":
		c.header("created_by", "created_by is required")
	case len(createdBy) > maxCreatedByLen:
		c.header("created_by", "created_by must be at most %d characters", maxCreatedByLen)
	}

	ref := strings.TrimSpace(req.ReferenceNumber)
	if len(ref) > maxReferenceLen {
		c.header("reference_number", "reference_number must be at most %d characters", maxReferenceLen)
	}

	if len(req.Items) == 0 {
		c.header("items", "at least one item is required")
	}
	if err := c.err(); err != nil {
		return nil, err
	}

	d.header = model.Transaction{
		TransactionID:   txID,
		TransactionDate: txDate,
		Type:            txType,
		ReferenceNumber: ref,
		Remarks:         strings.TrimSpace(req.Remarks),
		CreatedBy:       createdBy,
	}

	// items
	c = newCollector(apierror.KindInvalid)
	d.items = make([]draftItem, len(req.Items))
	for i, item := range req.Items {
		it := draftItem{rawProductID: strings.TrimSpace(item.ProductID)}
		if it.rawProductID == "" {
			c.item(i, "product_id", "product_id is required")
		} else if id, err := uuid.Parse(it.rawProductID); err == nil {
			it.productID = id
		}

		if !item.Quantity.Present() {
			c.item(i, "quantity", "quantity is required")
		} else if qty, err := parseQuantity(item.Quantity.String()); err != nil {
			c.item(i, "quantity", "quantity %q must be a whole number", item.Quantity.String())
		} else if qty <= 0 {
			c.item(i, "quantity", "quantity must be greater than 0")
		} else {
			it.line.Quantity = qty
		}

		if !item.UnitPrice.Present() {
			c.item(i, "unit_price", "unit_price is required")
		} else if price, err := decimal.NewFromString(item.UnitPrice.String()); err != nil {
			c.item(i, "unit_price", "unit_price %q must be a number", item.UnitPrice.String())
		} else if price = price.Round(2); !price.IsPositive() {
			c.item(i, "unit_price", "unit_price must be greater than 0")
		} else if price.GreaterThanOrEqual(maxUnitPrice) {
			c.item(i, "unit_price", "unit_price is too large")
		} else {
			it.line.UnitPrice = price
		}

		batch := strings.TrimSpace(item.BatchNumber)
		if len(batch) > maxBatchLen {
			c.item(i, "batch_number", "batch_number must be at most %d characters", maxBatchLen)
		}
		it.line.BatchNumber = batch

		if raw := strings.TrimSpace(item.ExpiryDate); raw != "" {
			exp, err := time.Parse(time.DateOnly, raw)
			if err != nil {
				c.item(i, "expiry_date", "expiry_date %q must be YYYY-MM-DD", raw)
			} else {
				it.line.ExpiryDate = &exp
			}
		}
		it.line.Remarks = strings.TrimSpace(item.Remarks)
		it.line.ProductID = it.productID
		d.items[i] = it
	}
	if err := c.err(); err != nil {
		return nil, err
	}
	return d, nil
}

// verify runs the checks that read the database: references, uniqueness and,
// for OUT, stock. With tx nil it reads outside any transaction.
func (s *movementService) verify(ctx context.Context, tx *gorm.DB, d *draft, lock bool) error {
	products, stock, txns := s.products, s.stock, s.txns
	if tx != nil {
		products, stock, txns = products.WithTx(tx), stock.WithTx(tx), txns.WithTx(tx)
	}

	// references
	ids := d.productIDs()
	var (
		found []model.Product
		err   error
	)
	if lock {
		found, err = products.LockByIDs(ctx, ids)
	} else {
		found, err = products.FindByIDs(ctx, ids)
	}
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	c := newCollector(apierror.KindNotFound)
	for i, it := range d.items {
		p, ok := byID[it.productID]
		switch {
		case it.productID == uuid.Nil:
			c.item(i, "product_id", "product %q does not exist", it.rawProductID)
		case !ok:
			c.item(i, "product_id", "product %s does not exist", it.productID)
		case !p.IsActive:
			c.item(i, "product_id", "product %s is inactive", p.Code)
		}
	}
	if err := c.err(); err != nil {
		return err
	}

	// uniqueness
	c = newCollector(apierror.KindDuplicate)
	seen := make(map[uuid.UUID]int, len(d.items))
	for i, it := range d.items {
		if first, dup := seen[it.productID]; dup {
			c.item(i, "product_id", "product %s already appears in item %d", byID[it.productID].Code, first)
			continue
		}
		seen[it.productID] = i
	}
	exists, err := txns.ExistsByTransactionID(ctx, d.header.TransactionID)
	if err != nil {
		return err
	}
	if exists {
		c.header("transaction_id", "transaction %s already exists", d.header.TransactionID)
	}
	if err := c.err(); err != nil {
		return err
	}

	// stock, against the ledger before this transaction
	if d.header.Type != model.TxOut {
		return nil
	}
	available, err := stock.CurrentStockBulk(ctx, ids)
	if err != nil {
		return err
	}
	c = newCollector(apierror.KindInsufficientStock)
	for i, it := range d.items {
		have := available[it.productID]
		if it.line.Quantity > have {
			c.item(i, "quantity", "insufficient stock for %s: available %d, requested %d",
				byID[it.productID].Code, have, it.line.Quantity)
		}
	}
	return c.err()
}

func (s *movementService) publishCreated(ctx context.Context, txn *model.Transaction, actor Actor) {
	ids := make([]uuid.UUID, len(txn.Lines))
	for i, l := range txn.Lines {
		ids[i] = l.ProductID
	}
	levels, err := s.stock.CurrentStockBulk(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Str("transaction_id", txn.TransactionID).Msg("skipping stock event")
		return
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Str("transaction_id", txn.TransactionID).Msg("skipping stock event")
		return
	}

	verb := "received"
	if txn.Type == model.TxOut {
		verb = "issued"
	}
	ev := newStockEvent(ActionMovementCreated, actor,
		fmt.Sprintf("%s %s %d units in %s", txn.CreatedBy, verb, txn.TotalQuantity(), txn.TransactionID))
	ev.TransactionID = txn.TransactionID
	ev.TransactionType = txn.Type
	for _, p := range products {
		ev.Products = append(ev.Products, EventStock{
			ProductID:    p.ID,
			ProductCode:  p.Code,
			CurrentStock: levels[p.ID],
			Status:       model.ClassifyStock(levels[p.ID], p.MinimumStock),
		})
	}
	s.events.Publish(ev)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp accepts RFC 3339, a naive timestamp (UTC) or a bare date.
func ParseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

// parseQuantity accepts integers and decimals with no fractional part,
// so 5 and 5.0 are both 5.
func parseQuantity(raw string) (int64, error) {
	if qty, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return qty, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) || !d.Truncate(0).BigInt().IsInt64() {
		return 0, fmt.Errorf("quantity %s is not a whole number", raw)
	}
	return d.IntPart(), nil
}
