// Package connection provides the respkv-cli connection to a server.
//
//   - client.go: RESP client over TCP (encode with pkg/resp, read replies
//     with the incremental decoder)
//   - manager.go: lazy dialing and reconnection for the REPL
package connection
