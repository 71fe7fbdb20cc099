// Package logger builds *slog.Logger instances with environment defaults,
// context-value injection and a set of attribute helpers that keep key names
// consistent across services.
//
//	log := logger.New(
//		logger.WithEnvironment(logger.ParseEnvironment(cfg.Env), "socialkit"),
//		logger.WithContextValue("request_id", requestid.ContextKey()),
//	)
//	log.InfoContext(ctx, "message sent",
//		logger.ConversationID(conv.ID),
//		logger.UserID(from),
//	)
//
// Helpers such as Error and UserID return an empty slog.Attr for nil input,
// so callers can pass them unconditionally.
package logger
