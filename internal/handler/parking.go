package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-lot-api/internal/model"
	"github.com/iliyamo/parking-lot-api/internal/parking"
	"github.com/iliyamo/parking-lot-api/internal/queue"
	"github.com/iliyamo/parking-lot-api/internal/repository"
	queue_publisher "github.com/iliyamo/parking-lot-api/internal/service"
	"github.com/iliyamo/parking-lot-api/internal/utils"
)

// plateRx matches Mercosul license plates: three letters, one digit,
// one letter, two digits.
var plateRx = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z][0-9]{2}$`)

// ParkingHandler serves check-in, check-out and visit lookups.  The
// engine owns the transactional core; this layer validates input and
// maps sentinel errors to responses.
type ParkingHandler struct {
	Engine  *parking.Engine
	Ledger  *repository.ParkingRepo
	Clients *repository.ClientRepo
}

func NewParkingHandler(engine *parking.Engine, ledger *repository.ParkingRepo, clients *repository.ClientRepo) *ParkingHandler {
	return &ParkingHandler{Engine: engine, Ledger: ledger, Clients: clients}
}

type checkInReq struct {
	LicensePlate string `json:"license_plate"`
	CarBrand     string `json:"car_brand"`
	CarModel     string `json:"car_model"`
	CarColor     string `json:"car_color"`
	ClientCPF    string `json:"client_cpf"`
}

type parkingResp struct {
	Receipt      string     `json:"receipt"`
	LicensePlate string     `json:"license_plate"`
	CarBrand     string     `json:"car_brand"`
	CarModel     string     `json:"car_model"`
	CarColor     string     `json:"car_color"`
	ClientCPF    string     `json:"client_cpf"`
	SpaceCode    string     `json:"space_code"`
	EntryDate    time.Time  `json:"entry_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Value        *string    `json:"value,omitempty"`
	Discount     *string    `json:"discount,omitempty"`
}

func toParkingResp(rec model.ParkingRecord) parkingResp {
	resp := parkingResp{
		Receipt:      rec.Receipt,
		LicensePlate: rec.LicensePlate,
		CarBrand:     rec.CarBrand,
		CarModel:     rec.CarModel,
		CarColor:     rec.CarColor,
		ClientCPF:    rec.ClientCPF,
		SpaceCode:    rec.SpaceCode,
		EntryDate:    rec.EntryDate,
		EndDate:      rec.EndDate,
	}
	if rec.Value != nil {
		v := rec.Value.StringFixed(2)
		resp.Value = &v
	}
	if rec.Discount != nil {
		d := rec.Discount.StringFixed(2)
		resp.Discount = &d
	}
	return resp
}

// CheckIn admits a vehicle for a registered client.  A full lot is a
// 404 on the free-space lookup, not a queueing condition.
func (h *ParkingHandler) CheckIn(c echo.Context) error {
	var req checkInReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	plate := strings.ToUpper(strings.TrimSpace(req.LicensePlate))
	if !plateRx.MatchString(plate) {
		return jsonError(c, http.StatusBadRequest, "invalid license plate")
	}
	if strings.TrimSpace(req.CarBrand) == "" || strings.TrimSpace(req.CarModel) == "" || strings.TrimSpace(req.CarColor) == "" {
		return jsonError(c, http.StatusBadRequest, "car brand/model/color required")
	}
	cpf := strings.TrimSpace(req.ClientCPF)
	if !utils.ValidCPF(cpf) {
		return jsonError(c, http.StatusBadRequest, "invalid cpf")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rec, err := h.Engine.CheckIn(ctx, parking.CheckInInput{
		LicensePlate: plate,
		CarBrand:     strings.TrimSpace(req.CarBrand),
		CarModel:     strings.TrimSpace(req.CarModel),
		CarColor:     strings.TrimSpace(req.CarColor),
		ClientCPF:    cpf,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrClientNotFound):
			return jsonError(c, http.StatusNotFound, "client not found")
		case errors.Is(err, repository.ErrNoFreeSpace):
			return jsonError(c, http.StatusNotFound, "no free parking space")
		default:
			return jsonError(c, repoErrorStatus(err), "check-in failed")
		}
	}

	c.Response().Header().Set(echo.HeaderLocation, "/v1/parking/check-in/"+rec.Receipt)
	return c.JSON(http.StatusCreated, toParkingResp(rec))
}

// CheckOut settles the stay identified by the receipt and frees its
// space.  A receipt that is unknown or already settled is a 404.  The
// settled stay is announced on the broker after commit; a broker
// outage only loses the event.
func (h *ParkingHandler) CheckOut(c echo.Context) error {
	receipt := strings.TrimSpace(c.Param("receipt"))
	if receipt == "" {
		return jsonError(c, http.StatusBadRequest, "receipt required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rec, err := h.Engine.CheckOut(ctx, receipt)
	if err != nil {
		if errors.Is(err, repository.ErrReceiptNotFound) {
			return jsonError(c, http.StatusNotFound, "receipt not found or already checked out")
		}
		return jsonError(c, repoErrorStatus(err), "check-out failed")
	}

	go publishCheckout(rec)

	return c.JSON(http.StatusOK, toParkingResp(rec))
}

// publishCheckout fires the checkout event with its own timeout,
// detached from the request lifecycle.
func publishCheckout(rec model.ParkingRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ev := queue.CheckoutCompletedEvent{
		Receipt:      rec.Receipt,
		ClientCPF:    rec.ClientCPF,
		LicensePlate: rec.LicensePlate,
		SpaceCode:    rec.SpaceCode,
		EntryDate:    rec.EntryDate.Format(time.RFC3339),
	}
	if rec.EndDate != nil {
		ev.EndDate = rec.EndDate.Format(time.RFC3339)
	}
	if rec.Value != nil {
		ev.Value = rec.Value.StringFixed(2)
	}
	if rec.Discount != nil {
		ev.Discount = rec.Discount.StringFixed(2)
	}
	_ = queue_publisher.PublishCheckoutCompleted(ctx, ev)
}

// GetByReceipt returns one visit in any state.  ADMIN sees every
// receipt; a CLIENT only their own.
func (h *ParkingHandler) GetByReceipt(c echo.Context) error {
	receipt := strings.TrimSpace(c.Param("receipt"))
	if receipt == "" {
		return jsonError(c, http.StatusBadRequest, "receipt required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rec, err := h.Engine.GetByReceipt(ctx, receipt)
	if err != nil {
		return jsonError(c, repoErrorStatus(err), "receipt not found")
	}

	if role, _ := c.Get("role").(string); role != model.RoleAdmin {
		uid, ok := currentUserID(c)
		if !ok {
			return jsonError(c, http.StatusUnauthorized, "unauthorized")
		}
		client, err := h.Clients.GetByUserID(ctx, uid)
		if err != nil || client.ID != rec.ClientID {
			return jsonError(c, http.StatusForbidden, "forbidden")
		}
	}
	return c.JSON(http.StatusOK, toParkingResp(rec))
}

// ListByCPF returns one page of a client's visits, newest first.
// ADMIN only.
func (h *ParkingHandler) ListByCPF(c echo.Context) error {
	cpf := strings.TrimSpace(c.Param("cpf"))
	if !utils.ValidCPF(cpf) {
		return jsonError(c, http.StatusBadRequest, "invalid cpf")
	}
	page, size := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	records, err := h.Ledger.ListByClientCPF(ctx, cpf, page, size)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	return c.JSON(http.StatusOK, visitsPage(page, size, records))
}

// ListMine returns one page of the authenticated CLIENT user's own
// visits, newest first.
func (h *ParkingHandler) ListMine(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	page, size := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	records, err := h.Ledger.ListByUserID(ctx, uid, page, size)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "query failed")
	}
	return c.JSON(http.StatusOK, visitsPage(page, size, records))
}

func visitsPage(page, size int, records []model.ParkingRecord) echo.Map {
	resp := make([]parkingResp, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toParkingResp(rec))
	}
	return echo.Map{"page": page, "size": size, "visits": resp}
}
