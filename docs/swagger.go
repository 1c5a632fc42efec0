// Package docs CUBIS Academy Session API documentation
package docs

// Swagger documentation info
// @title CUBIS Academy Session API
// @version 1.0
// @description Session lifecycle and device-binding service for the CUBIS Academy platform

// @contact.name API Support
// @contact.email support@cubisacademy.com

// @host localhost:8001
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// @tag.name auth
// @tag.description Login and logout glue around the session subsystem

// @tag.name sessions
// @tag.description Session validation, device binding, enumeration and revocation
