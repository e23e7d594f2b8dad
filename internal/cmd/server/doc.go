// Package serverrun exposes a shared Run entrypoint used by the CLI to start
// the radgw runtime with its UDP front end, gRPC and HTTP admin servers,
// handling lifecycle and shutdown.
//
// Example:
//
//	opts := serverrun.Options{DataDir: "./data", RADIUSAddr: ":1813", GRPCAddr: ":9091", HTTPAddr: ":8080", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()}
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = serverrun.Run(ctx, opts)
package serverrun
