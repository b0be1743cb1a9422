package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/shortedge/model"
	"github.com/shortedge/repository/operations"
	"github.com/shortedge/resizer"
	"github.com/shortedge/web/downloader"
)

const (
	missingImageMsg = "Missing 'imageBase64' in request body"
	missingURLMsg   = "Missing 'imageUrl' in request body"

	imageURLNotAllowedMsg = "'imageUrl' is not allowed"
	downloadFailedMsg     = "couldn't download image"

	sourceBase64 = "base64"
	sourceURL    = "url"

	defaultLimit = 50
	maxLimit     = 500

	requestIDHeader = "X-Request-Id"
)

var errTrailingData = errors.New("unexpected data after JSON object")

// Resizer is the part of *resizer.Resizer the handlers use.
type Resizer interface {
	Resize([]byte) (resizer.Result, error)
}

// Service represents handler service.
type Service struct {
	resizer      Resizer
	repo         model.OperationsRepository
	downloader   downloader.Service
	maxBodyBytes int64
	now          func() time.Time
}

// NewService returns new handler service.
func NewService(resizer Resizer, repo model.OperationsRepository, downloader downloader.Service, maxBodyBytes int64) *Service {
	return &Service{
		resizer:      resizer,
		repo:         repo,
		downloader:   downloader,
		maxBodyBytes: maxBodyBytes,
		now:          time.Now,
	}
}

type resizeRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

type resizeURLRequest struct {
	ImageURL string `json:"imageUrl"`
}

type resizeResponse struct {
	ImageBase64 string `json:"imageBase64"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Resize resizes an image sent as base64 inside a JSON body.
func (s *Service) Resize(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID()
	w.Header().Set(requestIDHeader, requestID)
	data, statusCode := func() ([]byte, int) {
		var req resizeRequest
		if statusCode, err := s.decodeBody(w, r, &req); err != nil {
			return errorBody(fmt.Sprintf("error decoding request body: %v", err)), statusCode
		}
		if req.ImageBase64 == "" {
			return errorBody(missingImageMsg), http.StatusBadRequest
		}

		input, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			return errorBody(fmt.Sprintf("error decoding 'imageBase64': %v", err)),
				http.StatusBadRequest
		}

		return s.resize(r, requestID, sourceBase64, input)
	}()
	response(w, data, statusCode)
}

// ResizeFromURL downloads an image from an http(s) or s3 URL and resizes it.
func (s *Service) ResizeFromURL(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID()
	w.Header().Set(requestIDHeader, requestID)
	data, statusCode := func() ([]byte, int) {
		ctx := r.Context()
		var req resizeURLRequest
		if statusCode, err := s.decodeBody(w, r, &req); err != nil {
			return errorBody(fmt.Sprintf("error decoding request body: %v", err)), statusCode
		}
		if req.ImageURL == "" {
			return errorBody(missingURLMsg), http.StatusBadRequest
		}

		input, err := s.downloader.Download(ctx, req.ImageURL)
		if err != nil {
			logger := requestLogger(r, requestID)
			logger.Error().Err(err).Str("url", req.ImageURL).Msg("download failed")
			s.record(ctx, logger, model.Operation{
				RequestID: requestID,
				Source:    sourceURL,
				Status:    model.StatusError,
				Error:     err.Error(),
				CreatedAt: s.now().UTC(),
			})
			switch {
			case errors.Is(err, downloader.ErrUnsupportedScheme):
				return errorBody(err.Error()), http.StatusBadRequest
			case errors.Is(err, downloader.ErrHostNotAllowed), errors.Is(err, downloader.ErrForbiddenAddress):
				return errorBody(imageURLNotAllowedMsg), http.StatusBadRequest
			}
			return errorBody(downloadFailedMsg), http.StatusInternalServerError
		}

		return s.resize(r, requestID, sourceURL, input)
	}()
	response(w, data, statusCode)
}

func (s *Service) resize(r *http.Request, requestID, source string, input []byte) ([]byte, int) {
	ctx := r.Context()
	logger := requestLogger(r, requestID)
	op := model.Operation{
		RequestID: requestID,
		Source:    source,
		CreatedAt: s.now().UTC(),
	}

	res, err := s.resizer.Resize(input)
	if res.Original != (image.Point{}) {
		op.OriginalResolution = resolution(res.Original)
		logger.Info().Str("size", op.OriginalResolution).Msg("original image size")
	}
	if res.Resized != (image.Point{}) {
		op.ResizedResolution = resolution(res.Resized)
		logger.Info().Str("size", op.ResizedResolution).Msg("resized image size")
	}
	if err != nil {
		logger.Error().Err(err).Int("bytes", len(input)).Msg("resize failed")
		op.Status = model.StatusError
		op.Error = err.Error()
		s.record(ctx, logger, op)
		return errorBody(err.Error()), http.StatusInternalServerError
	}

	op.Status = model.StatusSuccess
	s.record(ctx, logger, op)

	b, err := json.Marshal(resizeResponse{
		ImageBase64: base64.StdEncoding.EncodeToString(res.Data),
		Width:       res.Resized.X,
		Height:      res.Resized.Y,
	})
	if err != nil {
		return errorBody(fmt.Sprintf("error marshaling result: %v", err)),
			http.StatusInternalServerError
	}
	return b, http.StatusOK
}

// All returns the most recent operations.
func (s *Service) All(w http.ResponseWriter, r *http.Request) {
	data, statusCode := func() ([]byte, int) {
		ctx := r.Context()
		limit, err := validateLimit(r)
		if err != nil {
			return errorBody(fmt.Sprintf("error validating limit param: %v", err)),
				http.StatusBadRequest
		}
		ops, err := s.repo.All(ctx, limit)
		if err != nil {
			return errorBody(fmt.Sprintf("error getting operations from db: %v", err)),
				repoStatus(err)
		}
		if ops == nil {
			ops = []model.Operation{}
		}
		res, err := json.Marshal(ops)
		if err != nil {
			return errorBody(fmt.Sprintf("error during marshaling operations: %v", err)),
				http.StatusInternalServerError
		}
		return res, http.StatusOK
	}()
	response(w, data, statusCode)
}

// GetOne returns one operation by its ID.
func (s *Service) GetOne(w http.ResponseWriter, r *http.Request) {
	data, statusCode := func() ([]byte, int) {
		ctx := r.Context()
		id, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			return errorBody(fmt.Sprintf("error converting id to int: %v", err)),
				http.StatusBadRequest
		}
		op, err := s.repo.GetOne(ctx, id)
		if err != nil {
			return errorBody(fmt.Sprintf("couldn't get operation by id: %d with error: %v", id, err)),
				repoStatus(err)
		}
		res, err := json.Marshal(op)
		if err != nil {
			return errorBody(fmt.Sprintf("error marshaling result: %v", err)),
				http.StatusInternalServerError
		}
		return res, http.StatusOK
	}()
	response(w, data, statusCode)
}

// decodeBody reads a JSON object from the request. An empty body decodes as {}.
func (s *Service) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) (int, error) {
	if r.Body == nil {
		return 0, nil
	}
	body := r.Body
	if s.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	}
	dec := json.NewDecoder(body)
	err := dec.Decode(v)
	if err == io.EOF {
		return 0, nil
	}
	trailing := err == nil
	if trailing {
		// Only whitespace may follow the object.
		if _, err = dec.Token(); err == io.EOF {
			return 0, nil
		}
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, err
	case trailing:
		return http.StatusBadRequest, errTrailingData
	}
	return http.StatusBadRequest, err
}

// record writes op to the operation log. Failures are logged and otherwise ignored.
func (s *Service) record(ctx context.Context, logger *zerolog.Logger, op model.Operation) {
	if _, err := s.repo.Save(ctx, op); err != nil {
		logger.Warn().Err(err).Msg("could not save operation")
	}
}

func requestLogger(r *http.Request, requestID string) *zerolog.Logger {
	l := hlog.FromRequest(r).With().Str("requestId", requestID).Logger()
	return &l
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}

func resolution(p image.Point) string {
	return fmt.Sprintf("%dx%d", p.X, p.Y)
}

func repoStatus(err error) int {
	switch {
	case errors.Is(err, operations.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, operations.ErrDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(msg string) []byte {
	b, err := json.Marshal(errorResponse{Error: msg})
	if err != nil {
		return []byte(msg)
	}
	return b
}

func response(w http.ResponseWriter, data []byte, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func validateLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid limit param")
	}
	if limit <= 0 || limit > maxLimit {
		return 0, fmt.Errorf("limit is not in range [1-%d]", maxLimit)
	}
	return limit, nil
}
