// Package shutdown coordinates graceful process termination.
//
// Hooks are registered by name while the process starts and run in
// reverse order once SIGINT or SIGTERM arrives, or once the caller's
// context is cancelled. Every hook shares one deadline.
//
//	h := shutdown.NewHandler(10*time.Second, logger)
//	h.OnShutdown("engine", engine.Close)
//	h.OnShutdown("http", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
