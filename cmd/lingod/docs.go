package main

// General API documentation for swaggo. Regenerate internal/httpapi/apidocs
// with `swag init -g cmd/lingod/docs.go -o internal/httpapi/apidocs`.
//
// @title           lingod API
// @version         1.0
// @description     HTTP API for on-device translation, summarization and language detection sessions.
//
// @contact.name   lingod maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
