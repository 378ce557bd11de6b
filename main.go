package main

import (
	"munitask/internal/app"
)

// @title           API de tareas municipales
// @version         1.0
// @description     Gestión de tareas, avisos y adjuntos para personal municipal.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
