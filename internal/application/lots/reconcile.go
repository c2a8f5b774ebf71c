package lots

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// StockDiscrepancy diferencia entre el contador de stock y las fuentes que lo respaldan.
type StockDiscrepancy struct {
	ProductID     string
	ProductCode   string
	CompanyID     string
	CurrentStock  int64
	LedgerStock   int64 // Σentradas − Σsalidas
	OnHandSerials int64 // seriales in_inventory en lotes vigentes
	Repaired      bool
}

// ReconcileUseCase compara current_stock con el kardex y con los seriales en bodega.
type ReconcileUseCase struct {
	tx       TxRunner
	products repository.ProductRepository
	serials  repository.SerialRepository
	log      *logger.Logger
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(tx TxRunner, r Repos, log *logger.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{tx: tx, products: r.Products, serials: r.Serials, log: log.Component("reconcile")}
}

// Run revisa los productos de la empresa (vacío = todas). Con repair=true recalcula current_stock
// desde el kardex; los seriales en bodega solo se reportan.
func (uc *ReconcileUseCase) Run(ctx context.Context, companyID string, repair bool) ([]StockDiscrepancy, error) {
	products, err := uc.products.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	var out []StockDiscrepancy
	for _, p := range products {
		var d StockDiscrepancy
		err := uc.tx.Run(ctx, func(tx Repos) error {
			locked, err := tx.Products.GetForUpdate(ctx, p.ID)
			if err != nil {
				return err
			}
			if locked == nil {
				return domain.ErrNotFound
			}
			ledger, err := tx.Movements.SumByProduct(ctx, p.ID)
			if err != nil {
				return err
			}
			onHand, err := tx.Serials.CountOnHand(ctx, p.ID)
			if err != nil {
				return err
			}
			d = StockDiscrepancy{
				ProductID:     p.ID,
				ProductCode:   p.Code,
				CompanyID:     p.CompanyID,
				CurrentStock:  locked.CurrentStock,
				LedgerStock:   ledger,
				OnHandSerials: onHand,
			}
			if repair && d.CurrentStock != d.LedgerStock {
				if err := tx.Products.SetStock(ctx, p.ID, d.LedgerStock); err != nil {
					return err
				}
				d.Repaired = true
			}
			return nil
		})
		if err != nil {
			return out, err
		}
		if d.CurrentStock == d.LedgerStock && d.LedgerStock == d.OnHandSerials {
			continue
		}
		uc.log.Warn().
			Str("product_id", d.ProductID).
			Int64("current_stock", d.CurrentStock).
			Int64("ledger_stock", d.LedgerStock).
			Int64("on_hand_serials", d.OnHandSerials).
			Bool("repaired", d.Repaired).
			Msg("descuadre de stock")
		out = append(out, d)
	}
	return out, nil
}

// StartReconcileCron ejecuta la conciliación cada interval hasta que ctx se cancele.
func StartReconcileCron(ctx context.Context, uc *ReconcileUseCase, companyID string, repair bool, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		uc.log.Info().Dur("interval", interval).Msg("reconcile cron: started")
		for {
			select {
			case <-ctx.Done():
				uc.log.Info().Msg("reconcile cron: stopped")
				return
			case <-ticker.C:
				found, err := uc.Run(ctx, companyID, repair)
				if err != nil {
					uc.log.Error().Err(err).Msg("reconcile cron: run failed")
					continue
				}
				uc.log.Info().Int("discrepancies", len(found)).Msg("reconcile cron: done")
			}
		}
	}()
}
