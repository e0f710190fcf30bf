// Package app wires the dashboard service together: configuration,
// logging, telemetry, the provider client, the business services, the
// HTTP router, and the websocket quote stream. The Application owns
// startup order and graceful shutdown.
package app
