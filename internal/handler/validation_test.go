package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The validation paths reject bad input before any repository call, so
// these tests run the handlers with nil dependencies.

func newJSONContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCheckInRejectsBadPlate(t *testing.T) {
	h := NewParkingHandler(nil, nil, nil)
	for _, plate := range []string{"", "ABC123", "AB1C234", "abc1d23x", "ABCD123"} {
		c, rec := newJSONContext(t, http.MethodPost, "/v1/parking/check-in",
			`{"license_plate":"`+plate+`","car_brand":"Fiat","car_model":"Argo","car_color":"Blue","client_cpf":"52998224725"}`)
		require.NoError(t, h.CheckIn(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "plate %q must be rejected", plate)
	}
}

func TestCheckInAcceptsLowercasePlate(t *testing.T) {
	// Lowercase plates are normalized, so validation passes and the
	// handler proceeds to the missing-field check instead.
	h := NewParkingHandler(nil, nil, nil)
	c, rec := newJSONContext(t, http.MethodPost, "/v1/parking/check-in",
		`{"license_plate":"abc1d23","car_brand":"","car_model":"Argo","car_color":"Blue","client_cpf":"52998224725"}`)
	require.NoError(t, h.CheckIn(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "car brand/model/color")
}

func TestCheckInRejectsBadCPF(t *testing.T) {
	h := NewParkingHandler(nil, nil, nil)
	c, rec := newJSONContext(t, http.MethodPost, "/v1/parking/check-in",
		`{"license_plate":"ABC1D23","car_brand":"Fiat","car_model":"Argo","car_color":"Blue","client_cpf":"52998224726"}`)
	require.NoError(t, h.CheckIn(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid cpf")
}

func TestCreateSpaceRejectsBadCode(t *testing.T) {
	h := NewSpaceHandler(nil)
	for _, code := range []string{"", "A", "A-101", "TOOLONG"} {
		c, rec := newJSONContext(t, http.MethodPost, "/v1/spaces", `{"code":"`+code+`"}`)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "code %q must be rejected", code)
	}
}

func TestCreateClientRejectsShortName(t *testing.T) {
	h := NewClientHandler(nil)
	c, rec := newJSONContext(t, http.MethodPost, "/v1/clients",
		`{"name":"Ana","cpf":"52998224725"}`)
	c.Set("user_id", float64(7))
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name must be")
}

func TestPageParamsBounds(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/parking?page=-3&size=9999", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	page, size := pageParams(c)
	assert.Equal(t, 0, page)
	assert.Equal(t, 100, size)

	req = httptest.NewRequest(http.MethodGet, "/v1/parking", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	page, size = pageParams(c)
	assert.Equal(t, 0, page)
	assert.Equal(t, 20, size)
}
