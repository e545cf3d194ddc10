package main

import (
	"github.com/corray333/backend-labs/orders/internal/app"
	"github.com/corray333/backend-labs/orders/internal/config"
)

// @title		Orders API
// @version	1.0
// @description	Order intake with customer and stock validation.
// @BasePath	/
func main() {
	cfg := config.MustInit()
	app.MustNewApp(cfg).Run()
}
