// Package api exposes the review service over HTTP. It decodes and
// validates JSON requests, calls the card review, import and export
// services, and maps their errors to status codes and safe messages.
package api
