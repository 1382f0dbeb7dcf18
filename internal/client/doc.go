// Package client is the Go client for the storeadmin API. It keeps the
// signed-in session in a Store, attaches the bearer token to protected calls,
// and turns error bodies into values a form can display.
package client
