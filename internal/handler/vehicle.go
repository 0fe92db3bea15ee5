package handler

import (
    "database/sql"
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"

    "github.com/a6cars/rental-api/internal/model"
    "github.com/a6cars/rental-api/internal/repository"
)

// VehicleHandler exposes the rental catalog: public browse endpoints for
// guests and CRUD endpoints for the operator.
type VehicleHandler struct {
    Vehicles *repository.VehicleRepo
}

func NewVehicleHandler(v *repository.VehicleRepo) *VehicleHandler {
    if v == nil {
        panic("nil repository passed to NewVehicleHandler")
    }
    return &VehicleHandler{Vehicles: v}
}

type vehicleReq struct {
    Brand    string  `json:"brand"`
    Model    string  `json:"model"`
    Year     uint16  `json:"year"`
    DayRate  string  `json:"day_rate"`
    Location string  `json:"location"`
    ImageURL *string `json:"image_url"`
    IsActive *bool   `json:"is_active"`
}

type vehicleResp struct {
    ID         uint64  `json:"id"`
    Descriptor string  `json:"descriptor"`
    Brand      string  `json:"brand"`
    Model      string  `json:"model"`
    Year       uint16  `json:"year"`
    DayRate    string  `json:"day_rate"`
    Location   string  `json:"location"`
    ImageURL   *string `json:"image_url,omitempty"`
    IsActive   bool    `json:"is_active"`
}

func toVehicleResp(v model.Vehicle) vehicleResp {
    return vehicleResp{
        ID:         v.ID,
        Descriptor: v.Descriptor(),
        Brand:      v.Brand,
        Model:      v.Model,
        Year:       v.Year,
        DayRate:    v.DayRate.StringFixed(2),
        Location:   v.Location,
        ImageURL:   v.ImageURL,
        IsActive:   v.IsActive,
    }
}

func (r vehicleReq) validate() (decimal.Decimal, string) {
    if strings.TrimSpace(r.Brand) == "" || strings.TrimSpace(r.Model) == "" ||
        r.Year == 0 || strings.TrimSpace(r.Location) == "" {
        return decimal.Zero, "brand/model/year/location are required"
    }
    rate, err := decimal.NewFromString(strings.TrimSpace(r.DayRate))
    if err != nil || !rate.IsPositive() {
        return decimal.Zero, "day_rate must be a positive amount"
    }
    return rate, ""
}

// List handles GET /v1/vehicles.  Guests see only active vehicles; the
// ?all=true flag is honored on the admin route where the full catalog is
// needed.
func (h *VehicleHandler) List(c echo.Context) error {
    activeOnly := c.QueryParam("all") != "true"
    vehicles, err := h.Vehicles.List(c.Request().Context(), activeOnly)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load vehicles"})
    }
    items := make([]vehicleResp, 0, len(vehicles))
    for _, v := range vehicles {
        items = append(items, toVehicleResp(v))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/vehicles/:id.
func (h *VehicleHandler) Get(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
    }
    v, err := h.Vehicles.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load vehicle"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": toVehicleResp(*v)})
}

// Create handles POST /v1/admin/vehicles.
func (h *VehicleHandler) Create(c echo.Context) error {
    var req vehicleReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    rate, msg := req.validate()
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    v := &model.Vehicle{
        Brand:    strings.TrimSpace(req.Brand),
        Model:    strings.TrimSpace(req.Model),
        Year:     req.Year,
        DayRate:  rate,
        Location: strings.TrimSpace(req.Location),
        ImageURL: req.ImageURL,
        IsActive: true,
    }
    if req.IsActive != nil {
        v.IsActive = *req.IsActive
    }
    if _, err := h.Vehicles.Create(c.Request().Context(), v); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create vehicle"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"item": toVehicleResp(*v)})
}

// Update handles PUT /v1/admin/vehicles/:id.
func (h *VehicleHandler) Update(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
    }
    var req vehicleReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    rate, msg := req.validate()
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    v := &model.Vehicle{
        ID:       id,
        Brand:    strings.TrimSpace(req.Brand),
        Model:    strings.TrimSpace(req.Model),
        Year:     req.Year,
        DayRate:  rate,
        Location: strings.TrimSpace(req.Location),
        ImageURL: req.ImageURL,
        IsActive: true,
    }
    if req.IsActive != nil {
        v.IsActive = *req.IsActive
    }
    if err := h.Vehicles.Update(c.Request().Context(), v); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update vehicle"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": toVehicleResp(*v)})
}

// Delete handles DELETE /v1/admin/vehicles/:id.  Vehicles referenced by
// reservations are never physically removed; the row is deactivated so
// the booking history stays intact.
func (h *VehicleHandler) Delete(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
    }
    if err := h.Vehicles.Deactivate(c.Request().Context(), id); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete vehicle"})
    }
    return c.NoContent(http.StatusNoContent)
}
