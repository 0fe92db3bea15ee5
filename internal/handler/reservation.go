package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/a6cars/rental-api/internal/config"
    "github.com/a6cars/rental-api/internal/model"
    "github.com/a6cars/rental-api/internal/monitoring"
    "github.com/a6cars/rental-api/internal/payment"
    "github.com/a6cars/rental-api/internal/pricing"
    "github.com/a6cars/rental-api/internal/repository"
)

// dateLayout is the wire format for rental dates.
const dateLayout = "2006-01-02"

// ReservationHandler implements the customer side of the booking
// lifecycle: creating a reservation and requesting its payment QR.  Both
// operations run inside a single database transaction so a failure at any
// step leaves no partial state behind.  JWT authentication and the
// CUSTOMER role are enforced by middleware before these methods run.
type ReservationHandler struct {
    Cfg          config.Config
    Vehicles     *repository.VehicleRepo
    Reservations *repository.ReservationRepo
    Payments     *repository.PaymentRepo
    Now          func() time.Time // injectable clock
}

// NewReservationHandler constructs a ReservationHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewReservationHandler(cfg config.Config, v *repository.VehicleRepo, r *repository.ReservationRepo, p *repository.PaymentRepo) *ReservationHandler {
    if v == nil || r == nil || p == nil {
        panic("nil repository passed to NewReservationHandler")
    }
    return &ReservationHandler{Cfg: cfg, Vehicles: v, Reservations: r, Payments: p, Now: func() time.Time { return time.Now().UTC() }}
}

type createReservationReq struct {
    VehicleID uint64 `json:"vehicle_id"`
    StartDate string `json:"start_date"`
    EndDate   string `json:"end_date"`
}

type reservationResp struct {
    ID            uint64  `json:"id"`
    VehicleID     uint64  `json:"vehicle_id"`
    StartDate     string  `json:"start_date"`
    EndDate       string  `json:"end_date"`
    Amount        string  `json:"amount"`
    Status        string  `json:"status"`
    HandoverToken *string `json:"handover_token,omitempty"`
}

func toReservationResp(r *model.Reservation) reservationResp {
    return reservationResp{
        ID:            r.ID,
        VehicleID:     r.VehicleID,
        StartDate:     r.StartDate.UTC().Format(dateLayout),
        EndDate:       r.EndDate.UTC().Format(dateLayout),
        Amount:        r.Amount.StringFixed(2),
        Status:        string(r.Status),
        HandoverToken: r.HandoverToken,
    }
}

// Create handles POST /v1/reservations.  It prices the requested range
// against the vehicle's day rate and persists a new reservation in status
// BOOKED.  The catalog lookup, pricing and insert share one transaction:
// if the vehicle is missing or the range is invalid, nothing is written.
func (h *ReservationHandler) Create(c echo.Context) error {
    customerID, err := getCustomerID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createReservationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.VehicleID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_id is required"})
    }
    start, err := time.Parse(dateLayout, req.StartDate)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
    }
    end, err := time.Parse(dateLayout, req.EndDate)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
    }

    // Bound the whole unit of work; the catalog lookup must not hang the
    // transaction open.
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    tx, err := h.Reservations.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    dayRate, err := h.Vehicles.GetDayRateTx(ctx, tx, req.VehicleID)
    if err != nil {
        if errors.Is(err, repository.ErrVehicleNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "catalog lookup failed"})
    }
    amount, err := pricing.Quote(dayRate, start, end)
    if err != nil {
        if errors.Is(err, pricing.ErrInvalidRange) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be after start_date"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pricing failed"})
    }

    res := &model.Reservation{
        VehicleID:  req.VehicleID,
        CustomerID: customerID,
        StartDate:  start,
        EndDate:    end,
        Amount:     amount,
    }
    if err := h.Reservations.CreateTx(ctx, tx, res); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true
    monitoring.ReservationCreated()
    return c.JSON(http.StatusCreated, echo.Map{"reservation": toReservationResp(res)})
}

// Pay handles POST /v1/reservations/:id/pay.  It creates a pending
// payment intent with a fresh transaction reference, encodes the payment
// instruction QR and moves the reservation BOOKED → PENDING_PAYMENT.
// Intent creation and the status change commit together or not at all;
// when two requests race, the status guard lets exactly one through.
func (h *ReservationHandler) Pay(c echo.Context) error {
    customerID, err := getCustomerID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    tx, err := h.Reservations.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := h.Reservations.GetForUpdateTx(ctx, tx, resID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservation"})
    }
    if res.CustomerID != customerID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": repository.ErrForbidden.Error()})
    }
    if res.Status != model.StatusBooked {
        return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is not awaiting payment request"})
    }

    intent := &model.PaymentIntent{
        ReservationID: res.ID,
        CustomerID:    customerID,
        Amount:        res.Amount,
        Currency:      h.Cfg.Currency,
        PaymentRef:    uuid.NewString(),
    }
    if err := h.Payments.CreateTx(ctx, tx, intent); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "payment already requested"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create payment intent"})
    }
    if err := h.Reservations.TransitionTx(ctx, tx, res.ID,
        []model.Status{model.StatusBooked}, model.StatusPendingPayment, nil); err != nil {
        if errors.Is(err, repository.ErrInvalidTransition) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "payment already requested"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
    }

    instruction := payment.NewInstruction(h.Cfg.PayeeID, intent.Amount, intent.Currency, res.ID, intent.PaymentRef, h.Now())
    qrPayload, err := instruction.Encode()
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to encode payment instruction"})
    }

    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true
    monitoring.PaymentRequested()
    return c.JSON(http.StatusCreated, echo.Map{
        "intent": echo.Map{
            "id":          intent.ID,
            "amount":      intent.Amount.StringFixed(2),
            "currency":    intent.Currency,
            "status":      string(intent.Status),
            "payment_ref": intent.PaymentRef,
        },
        "qr_payload": qrPayload,
    })
}

// List handles GET /v1/reservations.  It returns all reservations of
// the current customer with vehicle descriptors, newest first.
func (h *ReservationHandler) List(c echo.Context) error {
    customerID, err := getCustomerID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    details, err := h.Reservations.ListByCustomer(c.Request().Context(), customerID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": details})
}

// Get handles GET /v1/reservations/:id.  Ownership is enforced in the
// query, so a foreign reservation reads as 404 rather than revealing its
// existence.
func (h *ReservationHandler) Get(c echo.Context) error {
    customerID, err := getCustomerID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    detail, err := h.Reservations.GetDetailForCustomer(c.Request().Context(), resID, customerID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
    }
    resp := echo.Map{"item": detail}
    // Attach the payment intent when one exists so the customer can see
    // whether their transfer was confirmed yet.  No intent is a normal
    // state for a BOOKED reservation; anything else is a real failure.
    intent, err := h.Payments.GetByReservation(c.Request().Context(), resID)
    switch {
    case err == nil:
        resp["payment"] = echo.Map{
            "amount":      intent.Amount.StringFixed(2),
            "currency":    intent.Currency,
            "status":      string(intent.Status),
            "payment_ref": intent.PaymentRef,
        }
    case errors.Is(err, sql.ErrNoRows):
        // payment not requested yet
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch payment intent"})
    }
    return c.JSON(http.StatusOK, resp)
}
