package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-api/internal/model"
	"github.com/iliyamo/parking-lot-api/internal/repository"
)

// SpaceHandler serves the parking space administration endpoints.
type SpaceHandler struct {
	Spaces *repository.SpaceRepo
}

func NewSpaceHandler(spaces *repository.SpaceRepo) *SpaceHandler {
	return &SpaceHandler{Spaces: spaces}
}

type createSpaceReq struct {
	Code string `json:"code"`
}

type spaceResp struct {
	ID        uint64    `json:"id"`
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toSpaceResp(s model.Space) spaceResp {
	return spaceResp{ID: s.ID, Code: s.Code, Status: s.Status, CreatedAt: s.CreatedAt}
}

// Create registers a new space, initially FREE.  Codes are exactly
// four characters, uppercased on the way in.
func (h *SpaceHandler) Create(c echo.Context) error {
	var req createSpaceReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if len(code) != 4 {
		return jsonError(c, http.StatusBadRequest, "code must be exactly 4 characters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	space, err := h.Spaces.Create(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrCodeExists) {
			return jsonError(c, http.StatusConflict, "space code already registered")
		}
		return jsonError(c, http.StatusInternalServerError, "create space failed")
	}
	return c.JSON(http.StatusCreated, toSpaceResp(space))
}

// GetByCode returns one space with its live status.
func (h *SpaceHandler) GetByCode(c echo.Context) error {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if code == "" {
		return jsonError(c, http.StatusBadRequest, "code required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	space, err := h.Spaces.GetByCode(ctx, code)
	if err != nil {
		return jsonError(c, repoErrorStatus(err), "space not found")
	}
	return c.JSON(http.StatusOK, toSpaceResp(space))
}
