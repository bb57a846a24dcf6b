package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"
	"github.com/mahirjain10/image-upload-lambda/internal/transformation"
	"github.com/mahirjain10/image-upload-lambda/internal/types"
	"github.com/mahirjain10/image-upload-lambda/internal/utils"
	"github.com/rs/zerolog"
)

//go:generate mockgen -destination=mocks/mock_handler.go -package=mocks github.com/mahirjain10/image-upload-lambda/internal/handler ObjectStore,Notifier

const (
	msgSuccess = "Image processed successfully"
	msgFailure = "Error processing image"

	// DefaultMaxImagePixels is 16383×16383, the same input limit sharp and
	// libvips apply by default.
	DefaultMaxImagePixels int64 = 268402689
)

// ObjectStore is the durable storage the artifacts are written to.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket string, key string, body []byte, contentType string) error
	DeleteObject(ctx context.Context, bucket string, key string) error
}

// ImageProcessor inspects and resizes images.
type ImageProcessor interface {
	Inspect(buffer []byte) (transformation.Metadata, error)
	Fit(buffer []byte, maxWidth int, maxHeight int) ([]byte, error)
}

// Notifier receives one status message per invocation. Failures to notify
// never fail the upload.
type Notifier interface {
	Publish(ctx context.Context, message *types.StatusMessage) error
}

type Options struct {
	BucketName        string
	MaxWidth          int
	MaxHeight         int
	MaxImageBytes     int
	MaxImagePixels    int64
	LegacyStatusCodes bool
	CleanupOnFailure  bool
}

type UploadHandler struct {
	store     ObjectStore
	processor ImageProcessor
	notifier  Notifier
	opts      Options
	logger    zerolog.Logger
	validate  *validator.Validate
	now       func() time.Time
}

func NewUploadHandler(store ObjectStore, processor ImageProcessor, notifier Notifier, opts Options, logger zerolog.Logger) *UploadHandler {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 800
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = 600
	}
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = 10 << 20
	}
	if opts.MaxImagePixels <= 0 {
		opts.MaxImagePixels = DefaultMaxImagePixels
	}
	return &UploadHandler{
		store:     store,
		processor: processor,
		notifier:  notifier,
		opts:      opts,
		logger:    logger,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// result is what a successful run hands to the response.
type result struct {
	fileName     string
	format       string
	originalPath string
	resizedPath  string
}

// Handle runs one invocation. The returned error is always nil: every
// failure is turned into a JSON response here.
func (h *UploadHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := h.logger.With().Str("requestId", req.RequestContext.RequestID).Logger()

	res, err := h.process(ctx, logger, req)
	if err != nil {
		e := asError(err)
		logger.Error().Err(e).Str("kind", e.Kind.String()).Msg("Error")
		h.notify(ctx, logger, utils.InitStatusData(res.fileName, types.FAILED, "", "", res.format, e.Public()))
		return respond(statusCode(e, h.opts.LegacyStatusCodes), types.ErrorResponse{
			Message: msgFailure,
			Error:   e.Public(),
		}), nil
	}

	h.notify(ctx, logger, utils.InitStatusData(res.fileName, types.PROCESSED, res.originalPath, res.resizedPath, res.format, ""))
	return respond(http.StatusOK, types.SuccessResponse{
		Message:      msgSuccess,
		OriginalPath: res.originalPath,
		ResizedPath:  res.resizedPath,
	}), nil
}

// process is the linear pipeline. The partial result is returned with the
// error so the failure notification can name the file when it is known.
func (h *UploadHandler) process(ctx context.Context, logger zerolog.Logger, req events.APIGatewayProxyRequest) (result, error) {
	var res result

	body, err := h.parseBody(req)
	if err != nil {
		return res, err
	}

	imageData, err := utils.DecodeBase64Image(body.Image)
	if err != nil {
		return res, inputError(MsgInvalidBase64, err)
	}
	logger.Info().Int("bytes", len(imageData)).Msg("Received image data")
	if len(imageData) > h.opts.MaxImageBytes {
		return res, inputError(MsgImageTooLarge, nil)
	}

	metadata, err := h.processor.Inspect(imageData)
	if err != nil {
		return res, inputError(MsgUnsupportedFormat, err)
	}
	logger.Info().Str("format", metadata.Format).Int("width", metadata.Width).Int("height", metadata.Height).Msg("Image metadata")
	res.format = metadata.Format
	if metadata.Pixels() > h.opts.MaxImagePixels {
		return res, inputError(MsgTooManyPixels, nil)
	}

	res.fileName, err = h.fileName(body.FileName, metadata.Format)
	if err != nil {
		return res, err
	}

	bucket := h.opts.BucketName
	if bucket == "" {
		return res, configError(MsgMissingBucket)
	}

	contentType := metadata.ContentType()
	originalKey := types.OriginalsPrefix + res.fileName
	resizedKey := types.ResizedPrefix + res.fileName

	if err := h.store.PutObject(ctx, bucket, originalKey, imageData, contentType); err != nil {
		return res, collaboratorError("failed to upload original image", err)
	}

	resized, err := h.processor.Fit(imageData, h.opts.MaxWidth, h.opts.MaxHeight)
	if err != nil {
		h.compensate(ctx, logger, bucket, originalKey)
		return res, collaboratorError("failed to resize image", err)
	}

	if err := h.store.PutObject(ctx, bucket, resizedKey, resized, contentType); err != nil {
		h.compensate(ctx, logger, bucket, originalKey)
		return res, collaboratorError("failed to upload resized image", err)
	}

	res.originalPath = originalKey
	res.resizedPath = resizedKey
	return res, nil
}

func (h *UploadHandler) parseBody(req events.APIGatewayProxyRequest) (types.UploadRequest, error) {
	var body types.UploadRequest

	raw := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return body, inputError(MsgInvalidJSON, err)
		}
		raw = decoded
	}

	if err := utils.ParseJSON(raw, &body); err != nil {
		return body, inputError(MsgInvalidJSON, err)
	}
	if err := h.validate.Struct(body); err != nil {
		return body, inputError(MsgMissingImage, nil)
	}
	return body, nil
}

func (h *UploadHandler) fileName(requested string, format string) (string, error) {
	if requested == "" {
		return utils.GenerateFileName(h.now(), format), nil
	}
	name, err := utils.SanitizeFileName(requested)
	if err != nil {
		return "", inputError(MsgInvalidFileName, err)
	}
	return name, nil
}

// compensate removes the original when CleanupOnFailure is set. Its own
// failure is only logged.
func (h *UploadHandler) compensate(ctx context.Context, logger zerolog.Logger, bucket string, key string) {
	if !h.opts.CleanupOnFailure {
		return
	}
	if err := h.store.DeleteObject(ctx, bucket, key); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("could not remove orphaned original")
		return
	}
	logger.Info().Str("key", key).Msg("removed orphaned original")
}

func (h *UploadHandler) notify(ctx context.Context, logger zerolog.Logger, data *types.StatusData) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Publish(ctx, utils.InitStatusMessage(data)); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Warn().Err(err).Msg("failed to publish status")
	}
}

// Headers are identical on every response.
func Headers() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}

func respond(status int, payload any) events.APIGatewayProxyResponse {
	body, err := utils.SerializeJSON(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"message":"` + msgFailure + `","error":"failed to encode response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    Headers(),
		Body:       string(body),
	}
}
