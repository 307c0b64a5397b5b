package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-api/internal/model"
	"github.com/iliyamo/parking-lot-api/internal/repository"
	"github.com/iliyamo/parking-lot-api/internal/utils"
)

// ClientHandler serves the client profile endpoints.
type ClientHandler struct {
	Clients *repository.ClientRepo
}

func NewClientHandler(clients *repository.ClientRepo) *ClientHandler {
	return &ClientHandler{Clients: clients}
}

type createClientReq struct {
	Name string `json:"name"`
	CPF  string `json:"cpf"`
}

type clientResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CPF       string    `json:"cpf"`
	CreatedAt time.Time `json:"created_at"`
}

func toClientResp(c model.Client) clientResp {
	return clientResp{ID: c.ID, Name: c.Name, CPF: c.CPF, CreatedAt: c.CreatedAt}
}

// Create registers the client profile for the authenticated CLIENT
// user.  One profile per account; the CPF must pass the checksum and
// be unique across the lot.
func (h *ClientHandler) Create(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}

	var req createClientReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.CPF = strings.TrimSpace(req.CPF)
	if len(req.Name) < 5 || len(req.Name) > 100 {
		return jsonError(c, http.StatusBadRequest, "name must be 5-100 characters")
	}
	if !utils.ValidCPF(req.CPF) {
		return jsonError(c, http.StatusBadRequest, "invalid cpf")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Clients.GetByUserID(ctx, uid); err == nil {
		return jsonError(c, http.StatusConflict, "user already has a client profile")
	} else if !errors.Is(err, repository.ErrClientNotFound) {
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}

	client, err := h.Clients.Create(ctx, req.Name, req.CPF, uid)
	if err != nil {
		if errors.Is(err, repository.ErrCPFExists) {
			return jsonError(c, http.StatusConflict, "cpf already registered")
		}
		return jsonError(c, http.StatusInternalServerError, "create client failed")
	}
	return c.JSON(http.StatusCreated, toClientResp(client))
}

// GetByID returns one client profile.  ADMIN only.
func (h *ClientHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return jsonError(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	client, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		return jsonError(c, repoErrorStatus(err), "client not found")
	}
	return c.JSON(http.StatusOK, toClientResp(client))
}

// List returns one page of client profiles.  ADMIN only.
func (h *ClientHandler) List(c echo.Context) error {
	page, size := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	clients, err := h.Clients.List(ctx, page, size)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	resp := make([]clientResp, 0, len(clients))
	for _, cl := range clients {
		resp = append(resp, toClientResp(cl))
	}
	return c.JSON(http.StatusOK, echo.Map{"page": page, "size": size, "clients": resp})
}

// Details returns the authenticated CLIENT user's own profile.
func (h *ClientHandler) Details(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	client, err := h.Clients.GetByUserID(ctx, uid)
	if err != nil {
		return jsonError(c, repoErrorStatus(err), "client profile not found")
	}
	return c.JSON(http.StatusOK, toClientResp(client))
}
