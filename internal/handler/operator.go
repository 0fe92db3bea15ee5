package handler

import (
    "context"
    "database/sql"
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/a6cars/rental-api/internal/config"
    "github.com/a6cars/rental-api/internal/model"
    "github.com/a6cars/rental-api/internal/monitoring"
    "github.com/a6cars/rental-api/internal/queue"
    "github.com/a6cars/rental-api/internal/repository"
    queue_publisher "github.com/a6cars/rental-api/internal/service"
    "github.com/a6cars/rental-api/internal/utils"
)

// OperatorHandler implements the operator side of the booking lifecycle:
// confirming that a payment arrived, minting the signed handover token
// and redeeming it at pickup.  All methods assume the ADMIN role was
// enforced by middleware.  Each step runs its guard and its writes inside
// one transaction, so double confirmations and double redemptions lose
// the race cleanly with a 409.
type OperatorHandler struct {
    Cfg          config.Config
    Reservations *repository.ReservationRepo
    Payments     *repository.PaymentRepo
    Now          func() time.Time // injectable clock
}

// NewOperatorHandler constructs an OperatorHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewOperatorHandler(cfg config.Config, r *repository.ReservationRepo, p *repository.PaymentRepo) *OperatorHandler {
    if r == nil || p == nil {
        panic("nil repository passed to NewOperatorHandler")
    }
    return &OperatorHandler{Cfg: cfg, Reservations: r, Payments: p, Now: func() time.Time { return time.Now().UTC() }}
}

// VerifyPayment handles POST /v1/admin/reservations/:id/verify-payment.
// The operator confirms the transfer for the reservation's pending intent
// arrived.  The intent flips to VERIFIED and the reservation moves
// PENDING_PAYMENT → PAID in the same transaction.
func (h *OperatorHandler) VerifyPayment(c echo.Context) error {
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

    intent, err := h.Payments.GetPendingByReservationTx(ctx, tx, resID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "no pending payment for reservation"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load payment intent"})
    }
    if err := h.Payments.MarkVerifiedTx(ctx, tx, intent.ID); err != nil {
        if errors.Is(err, repository.ErrInvalidTransition) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "payment already verified"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update payment intent"})
    }
    if err := h.Reservations.TransitionTx(ctx, tx, resID,
        []model.Status{model.StatusPendingPayment}, model.StatusPaid, nil); err != nil {
        if errors.Is(err, repository.ErrInvalidTransition) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "payment already verified"})
        }
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true
    monitoring.PaymentVerified()

    // Notify downstream consumers; failures are logged, never surfaced.
    go func() {
        ev := queue.PaymentVerifiedEvent{
            ReservationID: resID,
            CustomerID:    intent.CustomerID,
            Amount:        intent.Amount.StringFixed(2),
            PaymentRef:    intent.PaymentRef,
            VerifiedAt:    h.Now().Format(time.RFC3339),
        }
        if err := queue_publisher.PublishPaymentVerified(context.Background(), ev); err != nil {
            log.Printf("publish payment.verified failed: %v", err)
        }
    }()

    return c.JSON(http.StatusOK, echo.Map{
        "reservation_id": resID,
        "status":         string(model.StatusPaid),
    })
}

// MintHandoverToken handles POST /v1/admin/reservations/:id/handover-token.
// It seals the reservation, customer and vehicle details into a signed
// token and moves the reservation PAID → VERIFIED, storing the token on
// the row in the same statement.  A repeated call finds the reservation
// already VERIFIED and fails with 409; the stored token stays available
// through the reservation endpoints.
func (h *OperatorHandler) MintHandoverToken(c echo.Context) error {
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

    hd, err := h.Reservations.GetHandoverDataTx(ctx, tx, resID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservation"})
    }
    if hd.Reservation.Status != model.StatusPaid {
        return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is not paid"})
    }

    claims := utils.HandoverClaims{
        ReservationID: hd.Reservation.ID,
        CustomerName:  hd.CustomerName,
        CustomerEmail: hd.CustomerEmail,
        Vehicle:       hd.Vehicle,
        StartDate:     hd.Reservation.StartDate.UTC().Format(dateLayout),
        EndDate:       hd.Reservation.EndDate.UTC().Format(dateLayout),
    }
    token, err := utils.NewHandoverToken(h.Cfg.HandoverSecret, claims, h.Now())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mint handover token"})
    }
    if err := h.Reservations.TransitionTx(ctx, tx, resID,
        []model.Status{model.StatusPaid}, model.StatusVerified,
        &repository.TransitionPatch{HandoverToken: &token}); err != nil {
        if errors.Is(err, repository.ErrInvalidTransition) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "handover token already minted"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true
    monitoring.TokenMinted()
    return c.JSON(http.StatusOK, echo.Map{
        "reservation_id": resID,
        "status":         string(model.StatusVerified),
        "handover_token": token,
    })
}

type collectReq struct {
    Token string `json:"token"`
}

// Collect handles POST /v1/admin/collect.  The operator scans the
// customer's handover token at pickup.  The token's signature is checked
// first, then the stored copy on the reservation must equal the presented
// one, and the reservation must still be VERIFIED.  On success the
// reservation reaches its terminal COLLECTED state and the confirmation
// for the operator display is returned.
func (h *OperatorHandler) Collect(c echo.Context) error {
    var req collectReq
    if err := c.Bind(&req); err != nil || req.Token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
    }
    claims, err := utils.ParseHandoverToken(h.Cfg.HandoverSecret, req.Token)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid handover token"})
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

    res, err := h.Reservations.GetForUpdateTx(ctx, tx, claims.ReservationID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservation"})
    }
    if res.HandoverToken == nil || *res.HandoverToken != req.Token {
        return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrTokenMismatch.Error()})
    }
    if err := h.Reservations.TransitionTx(ctx, tx, res.ID,
        []model.Status{model.StatusVerified}, model.StatusCollected, nil); err != nil {
        if errors.Is(err, repository.ErrInvalidTransition) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already collected"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true
    monitoring.VehicleCollected()

    go func() {
        ev := queue.VehicleCollectedEvent{
            ReservationID: res.ID,
            CustomerID:    res.CustomerID,
            CustomerName:  claims.CustomerName,
            Vehicle:       claims.Vehicle,
            CollectedAt:   h.Now().Format(time.RFC3339),
        }
        if err := queue_publisher.PublishVehicleCollected(context.Background(), ev); err != nil {
            log.Printf("publish vehicle.collected failed: %v", err)
        }
    }()

    return c.JSON(http.StatusOK, echo.Map{
        "reservation_id": res.ID,
        "customer_name":  claims.CustomerName,
        "status":         string(model.StatusCollected),
    })
}

// ListReservations handles GET /v1/admin/reservations for the operator
// dashboard.
func (h *OperatorHandler) ListReservations(c echo.Context) error {
    details, err := h.Reservations.ListAll(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": details})
}
