// Package app wires configuration, clients and the upload handler. Both
// entrypoints build exactly one App per process.
package app

import (
	"context"
	"fmt"

	"github.com/mahirjain10/image-upload-lambda/config"
	"github.com/mahirjain10/image-upload-lambda/internal/aws"
	"github.com/mahirjain10/image-upload-lambda/internal/handler"
	"github.com/mahirjain10/image-upload-lambda/internal/logger"
	"github.com/mahirjain10/image-upload-lambda/internal/queue"
	"github.com/mahirjain10/image-upload-lambda/internal/transformation"
	"github.com/rs/zerolog"
)

type publisher interface {
	handler.Notifier
	Close() error
}

type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Handler   *handler.UploadHandler
	publisher publisher
}

// NewApp creates and initializes a new App instance with all dependencies
func NewApp(ctx context.Context) (*App, error) {
	// Load environment configuration
	envConfig, err := config.InitializeEnvs()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize environment config: %w", err)
	}

	log := logger.New(envConfig.LogLevel, envConfig.AppEnv, config.IsLambda())

	// Initialize AWS configuration
	awsConfig, err := config.InitializeAws(ctx, envConfig.AwsRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AWS config: %w", err)
	}

	// One S3 client for the lifetime of the process
	s3Service := aws.NewS3Service(aws.NewS3Client(awsConfig), log)

	// Status publishing is optional
	var pub publisher = queue.NoopPublisher{}
	if envConfig.RabbitMqURL != "" {
		statusPublisher, err := queue.NewStatusPublisher(envConfig.RabbitMqURL, envConfig.RabbitMqExchange, log)
		if err != nil {
			log.Warn().Err(err).Msg("status publishing disabled")
		} else {
			pub = statusPublisher
		}
	}

	uploadHandler := handler.NewUploadHandler(s3Service, transformation.NewProcessor(), pub, handler.Options{
		BucketName:        envConfig.BucketName,
		MaxWidth:          envConfig.ResizeMaxWidth,
		MaxHeight:         envConfig.ResizeMaxHeight,
		MaxImageBytes:     envConfig.MaxImageBytes,
		MaxImagePixels:    envConfig.MaxImagePixels,
		LegacyStatusCodes: envConfig.LegacyStatusCodes,
		CleanupOnFailure:  envConfig.CleanupOnFailure,
	}, log)

	log.Info().
		Str("region", envConfig.AwsRegion).
		Bool("bucketConfigured", envConfig.BucketName != "").
		Msg("Application initialized successfully")

	return &App{
		Config:    envConfig,
		Logger:    log,
		Handler:   uploadHandler,
		publisher: pub,
	}, nil
}

// Close gracefully shuts down the application
func (a *App) Close() error {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Error closing status publisher")
			return err
		}
	}
	return nil
}
