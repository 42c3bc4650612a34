package main

import (
	"github.com/evoshop/storefront/internal/app"
	"github.com/evoshop/storefront/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
