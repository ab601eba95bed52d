// ABOUTME: Handlers for item listing CRUD and status transitions
// ABOUTME: Public browse with filters, seller-or-admin writes, reserve and sell flows

package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/kirppis/kirppis/internal/auth"
	"github.com/kirppis/kirppis/internal/store"
)

const (
	maxTitleLength         = 100
	maxDescriptionLength   = 1000
	defaultReservationDays = 3
)

// CreateItemRequest is the JSON request body for POST /api/v1/items.
type CreateItemRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	CategoryID  string   `json:"category_id"`
	Condition   string   `json:"condition"`
	Images      []string `json:"images"`
}

// UpdateItemRequest is the JSON request body for PATCH /api/v1/items/{id}.
// Seller and status never change through this route; status moves through
// the reserve, cancel-reservation, and mark-sold transitions.
type UpdateItemRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	CategoryID  *string   `json:"category_id"`
	Condition   *string   `json:"condition"`
	Images      *[]string `json:"images"`
}

// ReserveItemRequest is the JSON request body for PATCH /api/v1/items/{id}/reserve.
type ReserveItemRequest struct {
	ReservationDays int `json:"reservation_days"`
}

// MarkSoldRequest is the JSON request body for PATCH /api/v1/items/{id}/mark-sold.
type MarkSoldRequest struct {
	BuyerID string `json:"buyer_id"`
}

// ItemResponse is the JSON shape of an item. DescriptionHTML is the
// markdown description rendered to HTML, populated on detail responses.
type ItemResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	DescriptionHTML string   `json:"description_html,omitempty"`
	Price           float64  `json:"price"`
	CategoryID      string   `json:"category_id"`
	Condition       string   `json:"condition"`
	Status          string   `json:"status"`
	Images          []string `json:"images"`
	SellerID        string   `json:"seller_id"`
	BuyerID         *string  `json:"buyer_id,omitempty"`
	ReservedUntil   *string  `json:"reserved_until,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

// ItemEnvelope is the JSON response wrapping a single item.
type ItemEnvelope struct {
	Status string `json:"status"`
	Data   struct {
		Item ItemResponse `json:"item"`
	} `json:"data"`
}

// ItemListResponse is the JSON response for GET /api/v1/items.
type ItemListResponse struct {
	Status  string `json:"status"`
	Results int    `json:"results"`
	Page    int    `json:"page"`
	Data    struct {
		Items []ItemResponse `json:"items"`
	} `json:"data"`
}

func newItemResponse(item *store.Item) ItemResponse {
	resp := ItemResponse{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Price:       item.Price,
		CategoryID:  item.CategoryID,
		Condition:   string(item.Condition),
		Status:      string(item.Status),
		Images:      item.Images,
		SellerID:    item.SellerID,
		BuyerID:     item.BuyerID,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.ReservedUntil != nil {
		until := item.ReservedUntil.UTC().Format(time.RFC3339)
		resp.ReservedUntil = &until
	}
	return resp
}

func itemEnvelope(item *store.Item) ItemEnvelope {
	env := ItemEnvelope{Status: "success"}
	env.Data.Item = newItemResponse(item)
	return env
}

// renderDescription converts a markdown item description to HTML.
func renderDescription(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering description: %w", err)
	}
	return buf.String(), nil
}

// parseItemFilter builds an ItemFilter from list query parameters.
func parseItemFilter(r *http.Request) (store.ItemFilter, error) {
	var filter store.ItemFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := store.ItemStatus(v)
		switch status {
		case store.ItemStatusAvailable, store.ItemStatusReserved, store.ItemStatusSold:
			filter.Status = &status
		default:
			return filter, auth.NewValidationError("status must be available, reserved, or sold")
		}
	}
	if v := q.Get("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if v := q.Get("seller_id"); v != "" {
		filter.SellerID = &v
	}
	if v := q.Get("min_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, auth.NewValidationError("min_price must be a number")
		}
		filter.MinPrice = &price
	}
	if v := q.Get("max_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, auth.NewValidationError("max_price must be a number")
		}
		filter.MaxPrice = &price
	}

	switch sort := q.Get("sort"); sort {
	case "", "price", "-price", "created_at", "-created_at":
		filter.Sort = sort
	default:
		return filter, auth.NewValidationError("sort must be price, -price, created_at, or -created_at")
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return filter, auth.NewValidationError("page must be a positive integer")
		}
		filter.Page = page
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filter, auth.NewValidationError("limit must be a positive integer")
		}
		filter.Limit = limit
	}

	return filter, nil
}

func (a *API) handleListItems(w http.ResponseWriter, r *http.Request) {
	filter, err := parseItemFilter(r)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	items, err := a.store.ListItems(r.Context(), filter)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	resp := ItemListResponse{Status: "success", Results: len(items), Page: page}
	resp.Data.Items = make([]ItemResponse, 0, len(items))
	for _, item := range items {
		resp.Data.Items = append(resp.Data.Items, newItemResponse(item))
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := a.store.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	env := itemEnvelope(item)
	html, err := renderDescription(item.Description)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	env.Data.Item.DescriptionHTML = html

	a.writeJSON(w, http.StatusOK, env)
}

// validateItemFields checks the shared create/update constraints.
func validateItemFields(title, description string, price float64, condition store.ItemCondition) error {
	var problems []string
	if strings.TrimSpace(title) == "" {
		problems = append(problems, "title is required")
	} else if len(title) > maxTitleLength {
		problems = append(problems, fmt.Sprintf("title cannot be more than %d characters", maxTitleLength))
	}
	if strings.TrimSpace(description) == "" {
		problems = append(problems, "description is required")
	} else if len(description) > maxDescriptionLength {
		problems = append(problems, fmt.Sprintf("description cannot be more than %d characters", maxDescriptionLength))
	}
	if price < 0 {
		problems = append(problems, "price cannot be negative")
	}
	if !store.ValidCondition(condition) {
		problems = append(problems, "condition must be new, like_new, good, fair, or poor")
	}
	if len(problems) > 0 {
		return auth.NewValidationError(strings.Join(problems, "; "))
	}
	return nil
}

// checkCategory verifies the referenced category exists.
func (a *API) checkCategory(w http.ResponseWriter, r *http.Request, categoryID string) bool {
	if categoryID == "" {
		a.fail(w, http.StatusBadRequest, "category_id is required")
		return false
	}
	if _, err := a.store.GetCategory(r.Context(), categoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.fail(w, http.StatusBadRequest, "category does not exist")
		} else {
			a.writeDomainError(w, r, err)
		}
		return false
	}
	return true
}

func (a *API) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	var req CreateItemRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	condition := store.ItemCondition(req.Condition)
	if err := validateItemFields(req.Title, req.Description, req.Price, condition); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if !a.checkCategory(w, r, req.CategoryID) {
		return
	}

	now := time.Now().UTC()
	item := &store.Item{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Condition:   condition,
		Status:      store.ItemStatusAvailable,
		Images:      req.Images,
		SellerID:    authCtx.User.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if item.Images == nil {
		item.Images = []string{}
	}

	if err := a.store.CreateItem(r.Context(), item); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, itemEnvelope(item))
}

// loadOwnedItem fetches an item and enforces the seller-or-admin gate.
// Writes the error response itself and returns nil when the caller may
// not proceed.
func (a *API) loadOwnedItem(w http.ResponseWriter, r *http.Request, action string) *store.Item {
	item, err := a.store.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return nil
	}

	authCtx := auth.MustFromContext(r.Context())
	if !authCtx.IsSelf(item.SellerID) && !authCtx.IsAdmin() {
		a.fail(w, http.StatusForbidden, "you do not have permission to "+action+" this item")
		return nil
	}
	return item
}

func (a *API) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	item := a.loadOwnedItem(w, r, "update")
	if item == nil {
		return
	}

	var req UpdateItemRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	if req.Title != nil {
		item.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Condition != nil {
		item.Condition = store.ItemCondition(*req.Condition)
	}
	if req.Images != nil {
		item.Images = *req.Images
	}
	if err := validateItemFields(item.Title, item.Description, item.Price, item.Condition); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if req.CategoryID != nil {
		if !a.checkCategory(w, r, *req.CategoryID) {
			return
		}
		item.CategoryID = *req.CategoryID
	}

	item.UpdatedAt = time.Now().UTC()
	if err := a.store.UpdateItem(r.Context(), item); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, itemEnvelope(item))
}

func (a *API) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	item := a.loadOwnedItem(w, r, "delete")
	if item == nil {
		return
	}

	if err := a.store.DeleteItem(r.Context(), item.ID); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleReserveItem(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	item, err := a.store.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if item.Status != store.ItemStatusAvailable {
		a.fail(w, http.StatusBadRequest, "item is already "+string(item.Status))
		return
	}

	var req ReserveItemRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	days := defaultReservationDays
	if req.ReservationDays > 0 {
		days = req.ReservationDays
	}

	until := time.Now().UTC().AddDate(0, 0, days)
	buyerID := authCtx.User.ID
	item.Status = store.ItemStatusReserved
	item.BuyerID = &buyerID
	item.ReservedUntil = &until
	item.UpdatedAt = time.Now().UTC()

	if err := a.store.TransitionItem(r.Context(), item, store.ItemStatusAvailable); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, itemEnvelope(item))
}

func (a *API) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	item, err := a.store.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if item.Status != store.ItemStatusReserved {
		a.fail(w, http.StatusBadRequest, "item is not reserved")
		return
	}

	isBuyer := item.BuyerID != nil && authCtx.IsSelf(*item.BuyerID)
	if !isBuyer && !authCtx.IsSelf(item.SellerID) && !authCtx.IsAdmin() {
		a.fail(w, http.StatusForbidden, "you do not have permission to cancel this reservation")
		return
	}

	item.Status = store.ItemStatusAvailable
	item.BuyerID = nil
	item.ReservedUntil = nil
	item.UpdatedAt = time.Now().UTC()

	if err := a.store.TransitionItem(r.Context(), item, store.ItemStatusReserved); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, itemEnvelope(item))
}

func (a *API) handleMarkSold(w http.ResponseWriter, r *http.Request) {
	item := a.loadOwnedItem(w, r, "sell")
	if item == nil {
		return
	}
	if item.Status == store.ItemStatusSold {
		a.fail(w, http.StatusBadRequest, "item is already sold")
		return
	}

	var req MarkSoldRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if req.BuyerID != "" {
		item.BuyerID = &req.BuyerID
	}

	from := item.Status
	item.Status = store.ItemStatusSold
	item.ReservedUntil = nil
	item.UpdatedAt = time.Now().UTC()

	if err := a.store.TransitionItem(r.Context(), item, from); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, itemEnvelope(item))
}
