// Package grpcserver hosts the gRPC admin surface for radgw, exposing the
// standard grpc.health.v1 service with a status that tracks the store.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: config.Default()})
//	s := grpcserver.New(rt)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":9091")
package grpcserver
