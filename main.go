package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/mahirjain10/image-upload-lambda/internal/app"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()

	// Initialize application once per execution environment
	application, err := app.NewApp(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	lambda.StartWithOptions(application.Handler.Handle, lambda.WithEnableSIGTERM(func() {
		application.Close()
	}))
}
