// Package http implements the local control API of the sync agent.
//
// Web, desktop and terminal shells use it to read the aggregate sync state,
// follow it over a websocket, trigger a pass, inspect or clear the durable
// queue and submit offline-first writes. Request tracing and access logging
// are handled here before requests are delegated to the service layer.
package http
