// Package runtime wires storage, config, and the shared gateway
// collaborators into a single-node radgw instance. It exposes Open/Close,
// basic health checks, and accessors for the client table, duplicate cache,
// outcome journal, and metrics registry that the gateway and admin surfaces
// share.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
package runtime
