// Package logger builds configured slog loggers and provides typed
// attribute helpers for the notification engine's structured log fields
// (user IDs, delivery methods, severities).
//
// Components accept a *slog.Logger through their functional options and fall
// back to slog.Default(); this package is how applications construct the
// logger they inject.
//
//	log := logger.New(
//	    logger.WithProduction("billing-notifications"),
//	)
//	logger.SetAsDefault(log)
package logger
