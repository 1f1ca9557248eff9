package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mesh-intelligence/dexhub/pkg/types"
)

// errBadRequest marks malformed requests that never reach the catalog.
var errBadRequest = errors.New("bad request")

// UpdateRequest is the PUT /creatures/:id body. Identifier and version are not
// accepted from clients.
type UpdateRequest struct {
	Name  string   `json:"name"`
	Types []string `json:"types"`
	Image struct {
		URL string `json:"url"`
	} `json:"image"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message       string `json:"message"`
	Status        int    `json:"status"`
	CorrelationID string `json:"correlation_id"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listCreatures(c echo.Context) error {
	all, err := s.catalog.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, all)
}

func (s *Server) getCreature(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	creature, err := s.catalog.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, creature)
}

func (s *Server) updateCreature(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req UpdateRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return fmt.Errorf("%w: malformed body", errBadRequest)
	}
	tags, err := types.ParseTags(req.Types)
	if err != nil {
		return err
	}

	updated, err := s.catalog.Update(c.Request().Context(), id, types.Creature{
		Name:  req.Name,
		Types: tags,
		Image: types.Image{URL: req.Image.URL},
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteCreature(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := s.catalog.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidID, raw)
	}
	return id, nil
}

// statusFor maps an error to its HTTP status and client-facing message.
// Internal failures get a generic message; the detail goes to the log.
func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code, fmt.Sprint(he.Message)
	case errors.Is(err, errBadRequest),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrUnknownType),
		errors.Is(err, types.ErrInvalidField):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, types.ErrConcurrentModification):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := statusFor(err)
	resp := ErrorResponse{
		Message:       message,
		Status:        status,
		CorrelationID: uuid.NewString(),
	}

	logger := s.logger.With(
		"correlation_id", resp.CorrelationID,
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"status", status,
	)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "err", err)
	} else {
		logger.Debug("request rejected", "err", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		logger.Error("writing error response", "err", err)
	}
}
