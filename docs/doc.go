// Package docs provides generated OpenAPI documentation.
//
// Mandolin API
//
//	@title			Mandolin API
//	@version		1.0
//	@description	Prior authorization form processing API: upload a PA form and referral document, download the filled PDF.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/supersonicwisd1/mandolin
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/mandolin/serve.go -o ./swagger --parseDependency --parseInternal
