// Package logger builds *slog.Logger values for toggle clients and tools.
//
// New is the single factory. It is configured with Option functions:
//
//   - WithFormat selects the output format, WithLevel the minimum level
//   - ParseFormat and ParseLevel read both from configuration strings
//   - WithOutput sets the destination (stderr by default)
//   - WithAttr attaches static attributes to every record
//   - WithContextExtractors inject attributes pulled from context
//
// Attributes attached with ContextWithAttrs travel with a context and are
// added to every record logged through it:
//
//	level, err := logger.ParseLevel(cfg.LogLevel)
//	if err != nil {
//		return err
//	}
//	log := logger.New(logger.WithLevel(level), logger.WithFormat(logger.FormatText))
//	ctx = logger.ContextWithAttrs(ctx, logger.Generation(gen))
//	log.InfoContext(ctx, "toggles refreshed", logger.Keys(keys))
//
// Helpers such as Error, Toggle and Keys keep attribute names consistent.
// Error returns an empty Attr for a nil error so it can be passed
// unconditionally.
//
// Components accept a logger through an option and fall back to Discard,
// so nothing is logged unless a caller asks for it.
package logger
