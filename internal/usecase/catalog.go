package usecase

import (
	"context"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/domain/repository"
)

// CatalogUseCase manages product records. Quantities change only through the
// inventory ledger.
type CatalogUseCase struct {
	store  repository.Store
	ledger *InventoryLedger
	logger *slog.Logger
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(store repository.Store, ledger *InventoryLedger, logger *slog.Logger) *CatalogUseCase {
	return &CatalogUseCase{store: store, ledger: ledger, logger: logger}
}

// CreateProduct adds a product; a positive initial quantity is booked as a restock.
func (u *CatalogUseCase) CreateProduct(ctx context.Context, actor model.Actor, details model.ProductDetails, initialQty int) (*model.Product, error) {
	if err := authorize(actor, reviewerRoles...); err != nil {
		return nil, err
	}
	details, err := normalizeDetails(details)
	if err != nil {
		return nil, err
	}
	if initialQty < 0 || initialQty > model.MaxQuantity {
		return nil, domainErrors.ErrInvalidInput
	}

	var product *model.Product
	err = u.store.WithinTransaction(ctx, func(tx repository.Factory) error {
		var err error
		product, err = tx.Products().Create(ctx, details)
		if err != nil {
			return err
		}
		if initialQty == 0 {
			return nil
		}
		return u.ledger.restock(ctx, tx, product, initialQty)
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("product created", slog.Int64("product_id", product.ID), slog.String("sku", product.SKU))
	return product, nil
}

// UpdateProduct changes catalog fields of a product.
func (u *CatalogUseCase) UpdateProduct(ctx context.Context, actor model.Actor, id int64, details model.ProductDetails) (*model.Product, error) {
	if err := authorize(actor, reviewerRoles...); err != nil {
		return nil, err
	}
	details, err := normalizeDetails(details)
	if err != nil {
		return nil, err
	}
	return u.store.Products().Update(ctx, id, details)
}

// ArchiveProduct hides a product from new orders. Existing orders keep it.
func (u *CatalogUseCase) ArchiveProduct(ctx context.Context, actor model.Actor, id int64) error {
	if err := authorize(actor, reviewerRoles...); err != nil {
		return err
	}
	if err := u.store.Products().SetActive(ctx, id, false); err != nil {
		return err
	}
	u.logger.Info("product archived", slog.Int64("product_id", id))
	return nil
}

// GetProduct returns a product by id.
func (u *CatalogUseCase) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return u.store.Products().GetByID(ctx, id)
}

// ListProducts returns the catalog ordered by SKU.
func (u *CatalogUseCase) ListProducts(ctx context.Context, activeOnly bool) ([]model.Product, error) {
	return u.store.Products().List(ctx, activeOnly)
}

// LowStock lists active products at or below their reorder threshold.
func (u *CatalogUseCase) LowStock(ctx context.Context) ([]model.Product, error) {
	return u.store.Products().ListLowStock(ctx)
}

func normalizeDetails(d model.ProductDetails) (model.ProductDetails, error) {
	d.SKU = strings.TrimSpace(d.SKU)
	d.Name = strings.TrimSpace(d.Name)
	d.Category = strings.TrimSpace(d.Category)
	if d.SKU == "" || d.Name == "" || d.Price.IsNegative() || d.MinStockLevel < 0 {
		return d, domainErrors.ErrInvalidInput
	}
	d.Price = d.Price.Round(2)
	return d, nil
}
