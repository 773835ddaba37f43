package main

import (
	"log"

	"github.com/patric-chuzhbe/tinyapp/internal/app"
	"github.com/patric-chuzhbe/tinyapp/internal/logger"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalln("Error initializing the application:", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		logger.Log.Fatalln("Error running the application:", err)
	}
}
