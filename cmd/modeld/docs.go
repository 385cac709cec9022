package main

// General API documentation annotations for the swaggo generator.
//
// @title           modeld API
// @version         1.0
// @description     HTTP API for local LLM fleet orchestration and OpenAI-compatible inference routing.
//
// @contact.name   modeld maintainers
// @contact.url    https://github.com/your-org/modeld
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
