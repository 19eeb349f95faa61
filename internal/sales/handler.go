package sales

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/printloom/printloom/internal/inventory"
	"github.com/printloom/printloom/internal/ledger"
	"github.com/printloom/printloom/internal/ledger/export"
	"github.com/printloom/printloom/internal/platform/httpx"
)

// SalesService defines the sale operations the handler depends on.
type SalesService interface {
	RecordSale(ctx context.Context, input RecordSaleInput) (ledger.Sale, error)
	GetSale(ctx context.Context, id int64) (ledger.Sale, error)
	ListSales(ctx context.Context, filter ledger.Filter) ([]ledger.Sale, error)
	RevenueSummary(ctx context.Context) (RevenueSummary, error)
}

// Handler manages sales endpoints.
type Handler struct {
	logger    *slog.Logger
	service   SalesService
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service SalesService) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.recordSale)
	r.Get("/", h.listSales)
	r.Get("/summary", h.revenueSummary)
	r.Get("/export.csv", h.exportSales)
	r.Get("/{id}", h.getSale)
}

type recordSaleRequest struct {
	UserID      int64  `json:"user_id" validate:"required,gt=0"`
	ItemID      int64  `json:"item_id" validate:"required,gt=0"`
	ItemType    string `json:"item_type" validate:"required"`
	ItemName    string `json:"item_name" validate:"required,max=200"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
	UnitPrice   int64  `json:"unit_price" validate:"gte=0"`
	PaymentType string `json:"payment_type" validate:"required,max=50"`
	ReferenceID string `json:"reference_id" validate:"omitempty,uuid"`
}

func (h *Handler) recordSale(w http.ResponseWriter, r *http.Request) {
	var req recordSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	sale, err := h.service.RecordSale(r.Context(), RecordSaleInput{
		UserID:      req.UserID,
		ItemID:      req.ItemID,
		ItemType:    req.ItemType,
		ItemName:    req.ItemName,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		PaymentType: req.PaymentType,
		ReferenceID: req.ReferenceID,
	})
	if err != nil {
		h.respondSaleError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrSaleNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("get sale", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sales, err := h.service.ListSales(r.Context(), filter)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if sales == nil {
		sales = []ledger.Sale{}
	}
	httpx.JSON(w, http.StatusOK, sales)
}

func (h *Handler) revenueSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.RevenueSummary(r.Context())
	if err != nil {
		h.logger.Error("revenue summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) exportSales(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sales, err := h.service.ListSales(r.Context(), filter)
	if err != nil {
		h.logger.Error("export sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="sales.csv"`)
	if err := export.WriteSalesCSV(w, sales); err != nil {
		h.logger.Error("write sales csv", slog.Any("error", err))
	}
}

func (h *Handler) respondSaleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inventory.ErrInvalidItemType),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidUnitPrice),
		errors.Is(err, ErrMissingField),
		errors.Is(err, ErrInvalidReference):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, inventory.ErrItemNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, inventory.ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	default:
		h.logger.Error("record sale", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Transaction Failed", "the sale was not recorded")
	}
}

func filterFromQuery(r *http.Request) (ledger.Filter, error) {
	var filter ledger.Filter
	query := r.URL.Query()

	if raw := query.Get("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ledger.Filter{}, errors.New("invalid user_id")
		}
		filter.UserID = userID
	}
	if raw := query.Get("item_type"); raw != "" {
		itemType, err := inventory.ParseItemType(raw)
		if err != nil {
			return ledger.Filter{}, err
		}
		filter.ItemType = itemType
	}
	filter.From = query.Get("from")
	// A bare day for "to" would sort before that day's timestamps, so pad
	// it to the end of the day.
	if to := query.Get("to"); to != "" {
		if len(to) == len(ledger.DayLayout) {
			to += " 23:59:59"
		}
		filter.To = to
	}
	return filter, nil
}
