// Package shutdown provides graceful shutdown for respkv.
//
// A Handler waits for SIGINT or SIGTERM (or an explicit Trigger) and then
// runs the registered hooks in reverse registration order under a shared
// deadline, so components started last are stopped first.
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown("redis", srv.Shutdown)
//	if err := h.Wait(); err != nil {
//		// some hook failed
//	}
package shutdown
