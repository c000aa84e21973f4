package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
	"github.com/lienduong188/finance-tracker-sub000/internal/plan/usecase/command"
	"github.com/lienduong188/finance-tracker-sub000/internal/plan/usecase/query"
	"github.com/lienduong188/finance-tracker-sub000/kafka"
	"github.com/lienduong188/finance-tracker-sub000/pkg/logger"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

// PlanHandler handles HTTP requests for payment plans using CQRS pattern
type PlanHandler struct {
	// Command handlers
	createHandler     *command.CreatePlanHandler
	createBulkHandler *command.CreatePlansBulkHandler
	markPaidHandler   *command.MarkPaymentPaidHandler
	cancelHandler     *command.CancelPlanHandler

	// Query handlers
	getHandler      *query.GetPlanHandler
	listHandler     *query.ListPlansHandler
	upcomingHandler *query.UpcomingPaymentsHandler
	previewHandler  *query.PreviewScheduleHandler

	kafkaPublisher *kafka.Publisher
}

// NewPlanHandler creates a new plan handler using dependency injection
func NewPlanHandler(
	createHandler *command.CreatePlanHandler,
	createBulkHandler *command.CreatePlansBulkHandler,
	markPaidHandler *command.MarkPaymentPaidHandler,
	cancelHandler *command.CancelPlanHandler,
	getHandler *query.GetPlanHandler,
	listHandler *query.ListPlansHandler,
	upcomingHandler *query.UpcomingPaymentsHandler,
	previewHandler *query.PreviewScheduleHandler,
	kafkaPublisher *kafka.Publisher,
) *PlanHandler {
	return &PlanHandler{
		createHandler:     createHandler,
		createBulkHandler: createBulkHandler,
		markPaidHandler:   markPaidHandler,
		cancelHandler:     cancelHandler,
		getHandler:        getHandler,
		listHandler:       listHandler,
		upcomingHandler:   upcomingHandler,
		previewHandler:    previewHandler,
		kafkaPublisher:    kafkaPublisher,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// planRequest is the shared body of plan creation, bulk creation and preview
type planRequest struct {
	TransactionIDs     []string `json:"transaction_ids" validate:"omitempty,dive,uuid4"`
	PaymentType        string   `json:"payment_type" validate:"required,oneof=INSTALLMENT REVOLVING"`
	TotalInstallments  int      `json:"total_installments" validate:"omitempty,min=0"`
	InstallmentFeeRate string   `json:"installment_fee_rate"`
	MonthlyPayment     string   `json:"monthly_payment"`
	AnnualInterestRate string   `json:"annual_interest_rate"`
	StartDate          string   `json:"start_date"`

	// Preview only
	Principal string `json:"principal"`
	Currency  string `json:"currency" validate:"omitempty,len=3"`
}

func (req *planRequest) parameters() (domain.PlanParameters, error) {
	params := domain.PlanParameters{
		PaymentType:       domain.PaymentType(req.PaymentType),
		TotalInstallments: req.TotalInstallments,
	}

	var err error
	if req.InstallmentFeeRate != "" {
		if params.InstallmentFeeRate, err = decimal.NewFromString(req.InstallmentFeeRate); err != nil {
			return params, domain.NewValidationError("INVALID_FEE_RATE", "installment_fee_rate is not a valid decimal")
		}
	}
	if req.MonthlyPayment != "" {
		if params.MonthlyPayment, err = decimal.NewFromString(req.MonthlyPayment); err != nil {
			return params, domain.NewValidationError("INVALID_MONTHLY_PAYMENT", "monthly_payment is not a valid decimal")
		}
	}
	if req.AnnualInterestRate != "" {
		if params.AnnualInterestRate, err = decimal.NewFromString(req.AnnualInterestRate); err != nil {
			return params, domain.NewValidationError("INVALID_INTEREST_RATE", "annual_interest_rate is not a valid decimal")
		}
	}
	return params, nil
}

func (req *planRequest) startDate() (time.Time, error) {
	if req.StartDate == "" {
		return time.Time{}, nil
	}
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return time.Time{}, domain.NewValidationError("INVALID_START_DATE", "start_date must be formatted as YYYY-MM-DD")
	}
	return startDate, nil
}

func (req *planRequest) transactionIDs() ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(req.TransactionIDs))
	for _, raw := range req.TransactionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, domain.NewValidationError("INVALID_TRANSACTION_ID", "transaction id "+raw+" is not a valid UUID")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CreatePlan handles POST /api/plans
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	cmd, err := h.buildCreateCommand(&req)
	if err != nil {
		respondError(w, err)
		return
	}

	ctx := r.Context()
	plan, err := h.createHandler.Handle(ctx, *cmd)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("Failed to create plan")
		respondError(w, err)
		return
	}

	if h.kafkaPublisher != nil {
		event := kafka.PlanCreatedEvent{
			PlanID:            plan.ID.String(),
			AccountID:         plan.AccountID.String(),
			PaymentType:       string(plan.PaymentType),
			Principal:         plan.OriginalAmount.String(),
			TotalWithCharges:  plan.TotalWithCharges.String(),
			Currency:          plan.Currency,
			TotalInstallments: plan.TotalInstallments,
		}
		if err := h.kafkaPublisher.PublishPlanCreated(ctx, event); err != nil {
			logger.Error(ctx).Err(err).Str("plan_id", plan.ID.String()).Msg("Failed to publish plan created event")
			// Persistence already succeeded; the event is best-effort
		}
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Plan created successfully",
		Data:    plan,
	})
}

func (h *PlanHandler) buildCreateCommand(req *planRequest) (*command.CreatePlanCommand, error) {
	ids, err := req.transactionIDs()
	if err != nil {
		return nil, err
	}
	params, err := req.parameters()
	if err != nil {
		return nil, err
	}
	startDate, err := req.startDate()
	if err != nil {
		return nil, err
	}
	return &command.CreatePlanCommand{
		TransactionIDs: ids,
		Parameters:     params,
		StartDate:      startDate,
	}, nil
}

// CreatePlansBulk handles POST /api/plans/bulk
func (h *PlanHandler) CreatePlansBulk(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	ids, err := req.transactionIDs()
	if err != nil {
		respondError(w, err)
		return
	}
	params, err := req.parameters()
	if err != nil {
		respondError(w, err)
		return
	}
	startDate, err := req.startDate()
	if err != nil {
		respondError(w, err)
		return
	}

	ctx := r.Context()
	result, err := h.createBulkHandler.Handle(ctx, command.CreatePlansBulkCommand{
		TransactionIDs: ids,
		Parameters:     params,
		StartDate:      startDate,
	})
	if err != nil {
		logger.Error(ctx).Err(err).Msg("Failed to create plans in bulk")
		respondError(w, err)
		return
	}

	if h.kafkaPublisher != nil {
		for _, plan := range result.Succeeded {
			event := kafka.PlanCreatedEvent{
				PlanID:            plan.ID.String(),
				AccountID:         plan.AccountID.String(),
				PaymentType:       string(plan.PaymentType),
				Principal:         plan.OriginalAmount.String(),
				TotalWithCharges:  plan.TotalWithCharges.String(),
				Currency:          plan.Currency,
				TotalInstallments: plan.TotalInstallments,
			}
			if err := h.kafkaPublisher.PublishPlanCreated(ctx, event); err != nil {
				logger.Error(ctx).Err(err).Str("plan_id", plan.ID.String()).Msg("Failed to publish plan created event")
			}
		}
	}

	// 207-style outcome: the batch succeeds as a whole even when items fail
	status := http.StatusCreated
	if result.FailedCount > 0 {
		status = http.StatusMultiStatus
	}
	respondJSON(w, status, Response{
		Success: true,
		Message: "Bulk plan creation finished",
		Data:    result,
	})
}

// PreviewSchedule handles POST /api/plans/preview
func (h *PlanHandler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	principal := decimal.Zero
	if req.Principal != "" {
		var err error
		if principal, err = decimal.NewFromString(req.Principal); err != nil {
			respondError(w, domain.NewValidationError("INVALID_PRINCIPAL", "principal is not a valid decimal"))
			return
		}
	}
	params, err := req.parameters()
	if err != nil {
		respondError(w, err)
		return
	}
	startDate, err := req.startDate()
	if err != nil {
		respondError(w, err)
		return
	}

	schedule, err := h.previewHandler.Handle(r.Context(), query.PreviewScheduleQuery{
		Principal:  principal,
		Currency:   req.Currency,
		Parameters: params,
		StartDate:  startDate,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: schedule})
}

// GetPlan handles GET /api/plans/{id}
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid plan ID"})
		return
	}

	plan, err := h.getHandler.Handle(r.Context(), query.GetPlanQuery{ID: id})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: plan})
}

// ListPlans handles GET /api/plans
func (h *PlanHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	filter, err := planFilterFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	page, err := h.listHandler.Handle(r.Context(), query.ListPlansQuery{Filter: *filter})
	if err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to list plans")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: page})
}

func planFilterFromQuery(r *http.Request) (*domain.PlanFilter, error) {
	q := r.URL.Query()
	filter := &domain.PlanFilter{
		SortBy:   q.Get("sort_by"),
		SortDesc: q.Get("order") == "desc",
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	if raw := q.Get("status"); raw != "" {
		status := domain.PlanStatus(raw)
		if status != domain.PlanStatusActive && status != domain.PlanStatusCompleted && status != domain.PlanStatusCancelled {
			return nil, domain.NewValidationError("INVALID_STATUS", "status must be ACTIVE, COMPLETED or CANCELLED")
		}
		filter.Status = &status
	}
	if raw := q.Get("payment_type"); raw != "" {
		paymentType := domain.PaymentType(raw)
		if paymentType != domain.PaymentTypeInstallment && paymentType != domain.PaymentTypeRevolving {
			return nil, domain.NewValidationError("INVALID_PAYMENT_TYPE", "payment_type must be INSTALLMENT or REVOLVING")
		}
		filter.PaymentType = &paymentType
	}
	if raw := q.Get("account_id"); raw != "" {
		accountID, err := uuid.Parse(raw)
		if err != nil {
			return nil, domain.NewValidationError("INVALID_ACCOUNT_ID", "account_id is not a valid UUID")
		}
		filter.AccountID = &accountID
	}
	return filter, nil
}

// MarkPaymentPaid handles POST /api/plans/{id}/payments/{paymentID}/pay
func (h *PlanHandler) MarkPaymentPaid(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	planID, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid plan ID"})
		return
	}
	paymentID, err := uuid.Parse(vars["paymentID"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid payment ID"})
		return
	}

	var req struct {
		PaidAt string `json:"paid_at"`
	}
	// Body is optional; an empty body means paid now
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	var paidAt time.Time
	if req.PaidAt != "" {
		if paidAt, err = time.Parse(time.RFC3339, req.PaidAt); err != nil {
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "paid_at must be formatted as RFC 3339"})
			return
		}
	}

	ctx := r.Context()
	result, err := h.markPaidHandler.Handle(ctx, command.MarkPaymentPaidCommand{
		PlanID:    planID,
		PaymentID: paymentID,
		PaidAt:    paidAt,
	})
	if err != nil {
		logger.Error(ctx).Err(err).Str("plan_id", planID.String()).Msg("Failed to mark payment paid")
		respondError(w, err)
		return
	}

	if h.kafkaPublisher != nil {
		event := kafka.PaymentPaidEvent{
			PlanID:        result.Plan.ID.String(),
			PaymentID:     paymentID.String(),
			PaymentNumber: result.Payment.PaymentNumber,
			Amount:        result.Payment.Total.String(),
			Currency:      result.Plan.Currency,
			PlanStatus:    string(result.Plan.Status),
		}
		if err := h.kafkaPublisher.PublishPaymentPaid(ctx, event); err != nil {
			logger.Error(ctx).Err(err).Str("plan_id", planID.String()).Msg("Failed to publish payment paid event")
		}
		if result.Plan.Status == domain.PlanStatusCompleted {
			completed := kafka.PlanCompletedEvent{
				PlanID:    result.Plan.ID.String(),
				AccountID: result.Plan.AccountID.String(),
			}
			if err := h.kafkaPublisher.PublishPlanCompleted(ctx, completed); err != nil {
				logger.Error(ctx).Err(err).Str("plan_id", planID.String()).Msg("Failed to publish plan completed event")
			}
		}
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Payment marked as paid",
		Data:    result,
	})
}

// CancelPlan handles POST /api/plans/{id}/cancel
func (h *PlanHandler) CancelPlan(w http.ResponseWriter, r *http.Request) {
	planID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid plan ID"})
		return
	}

	ctx := r.Context()
	plan, err := h.cancelHandler.Handle(ctx, command.CancelPlanCommand{PlanID: planID})
	if err != nil {
		logger.Error(ctx).Err(err).Str("plan_id", planID.String()).Msg("Failed to cancel plan")
		respondError(w, err)
		return
	}

	if h.kafkaPublisher != nil {
		event := kafka.PlanCancelledEvent{
			PlanID:    plan.ID.String(),
			AccountID: plan.AccountID.String(),
		}
		if err := h.kafkaPublisher.PublishPlanCancelled(ctx, event); err != nil {
			logger.Error(ctx).Err(err).Str("plan_id", planID.String()).Msg("Failed to publish plan cancelled event")
		}
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Plan cancelled successfully",
		Data:    plan,
	})
}

// UpcomingPayments handles GET /api/payments/upcoming
func (h *PlanHandler) UpcomingPayments(w http.ResponseWriter, r *http.Request) {
	windowDays := 7
	if raw := r.URL.Query().Get("window_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "window_days must be an integer"})
			return
		}
		windowDays = parsed
	}

	payments, err := h.upcomingHandler.Handle(r.Context(), query.UpcomingPaymentsQuery{WindowDays: windowDays})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"window_days": windowDays,
			"payments":    payments,
			"total":       len(payments),
		},
	})
}

// RegisterRoutes registers all plan routes
func (h *PlanHandler) RegisterRoutes(router *mux.Router) {
	middlewareConfig := DefaultMiddlewareConfig()
	authRequired := middlewareConfig.GetAuthMiddleware()

	router.HandleFunc("/api/plans", authRequired(h.CreatePlan)).Methods("POST")
	router.HandleFunc("/api/plans/bulk", authRequired(h.CreatePlansBulk)).Methods("POST")
	router.HandleFunc("/api/plans/preview", authRequired(h.PreviewSchedule)).Methods("POST")
	router.HandleFunc("/api/plans", authRequired(h.ListPlans)).Methods("GET")
	router.HandleFunc("/api/plans/{id}", authRequired(h.GetPlan)).Methods("GET")
	router.HandleFunc("/api/plans/{id}/payments/{paymentID}/pay", authRequired(h.MarkPaymentPaid)).Methods("POST")
	router.HandleFunc("/api/plans/{id}/cancel", authRequired(h.CancelPlan)).Methods("POST")
	router.HandleFunc("/api/payments/upcoming", authRequired(h.UpcomingPayments)).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *PlanHandler) RegisterHealthCheck(router *mux.Router, db *gorm.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Plan service is healthy",
		})
	}).Methods("GET")
}

// respondError translates a domain error into the matching HTTP status
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict, domain.KindInvalidState:
		status = http.StatusConflict
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}

	respondJSON(w, status, Response{
		Success: false,
		Error:   message,
		Code:    domain.CodeOf(err),
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
