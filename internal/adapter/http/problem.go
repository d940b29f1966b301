package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"jobfolio/internal/adapter/repository"
	"jobfolio/internal/editor"
	"jobfolio/internal/usecase"
	"jobfolio/pkg/backend"
)

// Problem types for RFC 7807 Problem Details responses.
const (
	ProblemTypeNotFound      = "https://jobfolio.dev/problems/not-found"
	ProblemTypeBadRequest    = "https://jobfolio.dev/problems/bad-request"
	ProblemTypeInvalidEdit   = "https://jobfolio.dev/problems/invalid-edit"
	ProblemTypeInternal      = "https://jobfolio.dev/problems/internal-error"
	ProblemTypeRateLimited   = "https://jobfolio.dev/problems/rate-limited"
	ProblemTypeBadGateway    = "https://jobfolio.dev/problems/bad-gateway"
	ProblemTypeTimeout       = "https://jobfolio.dev/problems/timeout"
	ProblemTypeUnavailable   = "https://jobfolio.dev/problems/unavailable"
	ProblemTypeSaveFailed    = "https://jobfolio.dev/problems/save-failed"
	problemContentType       = "application/problem+json"
	generationTimeoutDetail  = "Request timeout - generation took too long"
	generationFailedFallback = "Generation failed"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// saveProblem carries the draft that could not be saved so the caller can
// retry with it.
type saveProblem struct {
	Problem
	Draft map[string]interface{} `json:"draft"`
}

func writeProblem(c *fiber.Ctx, p interface{}, status int) error {
	c.Status(status)
	if err := c.JSON(p); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, problemContentType)
	return nil
}

func problem(c *fiber.Ctx, status int, typ, title, detail string) error {
	return writeProblem(c, Problem{
		Type:     typ,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Path(),
	}, status)
}

// problemFor maps an error from any layer to a status and problem type.
func problemFor(err error) (int, string, string, string) {
	var fe *fiber.Error
	var se *backend.StatusError
	var ne *backend.NetworkError
	switch {
	case errors.As(err, &fe):
		return fe.Code, ProblemTypeBadRequest, statusTitle(fe.Code), fe.Message
	case errors.Is(err, repository.ErrInvalidID):
		return fiber.StatusBadRequest, ProblemTypeBadRequest, "Bad Request", "Invalid portfolio ID format"
	case errors.Is(err, repository.ErrNotFound):
		return fiber.StatusNotFound, ProblemTypeNotFound, "Not Found", notFoundDetail(err)
	case errors.Is(err, usecase.ErrEmptyResume):
		return fiber.StatusBadRequest, ProblemTypeBadRequest, "Bad Request", err.Error()
	case errors.Is(err, usecase.ErrRateLimited):
		return fiber.StatusTooManyRequests, ProblemTypeRateLimited, "Too Many Requests", err.Error()
	case errors.Is(err, usecase.ErrGenerationTimeout):
		return fiber.StatusGatewayTimeout, ProblemTypeTimeout, "Gateway Timeout", generationTimeoutDetail
	case errors.Is(err, editor.ErrSectionNotFound),
		errors.Is(err, editor.ErrIndexOutOfRange),
		errors.Is(err, editor.ErrInvalidValue),
		errors.Is(err, editor.ErrUnknownOp),
		errors.Is(err, editor.ErrInvalidDocument):
		return fiber.StatusUnprocessableEntity, ProblemTypeInvalidEdit, "Unprocessable Entity", err.Error()
	case errors.As(err, &se):
		switch se.StatusCode {
		case fiber.StatusNotFound:
			return fiber.StatusNotFound, ProblemTypeNotFound, "Not Found", se.Error()
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			return se.StatusCode, ProblemTypeBadRequest, statusTitle(se.StatusCode), se.Error()
		}
		return fiber.StatusBadGateway, ProblemTypeBadGateway, "Bad Gateway", se.Error()
	case errors.As(err, &ne):
		return fiber.StatusBadGateway, ProblemTypeBadGateway, "Bad Gateway", ne.Error()
	}
	return fiber.StatusInternalServerError, ProblemTypeInternal, "Internal Server Error", "internal error"
}

func notFoundDetail(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

func statusTitle(code int) string {
	if s := utils.StatusMessage(code); s != "" {
		return s
	}
	return fmt.Sprintf("HTTP %d", code)
}

// errorHandler is the app's fiber ErrorHandler: every error leaves as a
// problem document.
func (h *Handler) errorHandler(c *fiber.Ctx, err error) error {
	status, typ, title, detail := problemFor(err)
	if status >= fiber.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	return problem(c, status, typ, title, detail)
}
