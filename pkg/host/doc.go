// Package host is the receiving side of the proxy renderer.
//
// An Applier replays protocol batches onto a hostdom.Document, a Worker
// owns an Applier on its own goroutine, and Server exposes workers to
// remote engines over websocket:
//
//	srv := host.NewServer(host.ServerOptions{})
//	http.ListenAndServe(":7070", srv.Handler())
//
// Routes:
//
//	GET  /ws                      upgrade; one document per connection
//	GET  /healthz                 liveness
//	GET  /metrics                 Prometheus metrics
//	GET  /connections             ids of live connections
//	GET  /snapshot/{conn}         HTML of a connection's document
//	POST /snapshot/{conn}         persist the HTML through the snapshot store
//	POST /dispatch/{conn}/{node}  dispatch ?type= on a node, for tooling
package host
