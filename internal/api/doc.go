// Package api exposes the parameter store over HTTP. It decodes requests,
// calls the parameter service and maps service errors to status codes and
// messages that are safe to show a client.
package api
