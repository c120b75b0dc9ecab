// Package services implements the stock pipeline behind the CLI commands and
// the HTTP handlers.
//
// StockService runs load, aggregate, render and export as traced stages and
// records one pipeline metric per run. It holds only configuration and
// thread-safe telemetry, so one instance may serve concurrent requests; every
// call works on its own table and summary.
//
//	svc := services.NewStockService(cfg, tel, logger)
//	analysis, err := svc.GenerateChart(ctx, "stock.csv", "stock_chart.png")
//	if err != nil {
//	    return err
//	}
//	fmt.Print(analysis.Report())
package services
