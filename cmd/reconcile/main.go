// Command reconcile compara current_stock con el kardex y los seriales en bodega, y opcionalmente
// recalcula el stock desde el kardex.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/Inventario-lotes/internal/app"
	"github.com/jhoicas/Inventario-lotes/pkg/config"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

func main() {
	companyID := flag.String("company", "", "empresa a conciliar (vacío = todas)")
	repair := flag.Bool("repair", false, "recalcular current_stock desde el kardex")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "reconcile"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.DB.Enabled() {
		log.Fatal().Msg("reconcile requiere DATABASE_URL o DB_HOST")
	}
	engine, err := app.Build(ctx, cfg, log, false)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar motor de lotes")
	}
	defer engine.Close()

	found, err := engine.Reconcile.Run(ctx, *companyID, *repair)
	if err != nil {
		log.Error().Err(err).Msg("conciliación interrumpida")
	}
	for _, d := range found {
		log.Info().
			Str("product_id", d.ProductID).
			Str("code", d.ProductCode).
			Int64("current_stock", d.CurrentStock).
			Int64("ledger_stock", d.LedgerStock).
			Int64("on_hand_serials", d.OnHandSerials).
			Bool("repaired", d.Repaired).
			Msg("descuadre")
	}
	log.Info().Int("discrepancies", len(found)).Bool("repair", *repair).Msg("conciliación terminada")
	if err != nil || (len(found) > 0 && !*repair) {
		engine.Close()
		os.Exit(1)
	}
}
