package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/scope"
	"github.com/Ostech2/uhsms/internal/validation"
)

const (
	EventApprovalSubmitted = "approval_submitted"
	EventApprovalDecided   = "approval_decided"
)

// ApprovalNotifier is told about approval changes after they are committed.
type ApprovalNotifier interface {
	ApprovalChanged(event string, approval models.WardenApproval)
}

type ApprovalService struct {
	DB       *gorm.DB
	Notifier ApprovalNotifier
}

func (s *ApprovalService) notify(event string, a models.WardenApproval) {
	if s.Notifier != nil {
		s.Notifier.ApprovalChanged(event, a)
	}
}

// ItemDetails is the inventory payload carried by an inventory_add request.
type ItemDetails struct {
	Name         string `json:"name"`
	CategoryID   string `json:"category_id"`
	HostelID     string `json:"hostel_id"`
	RoomID       string `json:"room_id"`
	Quantity     *int   `json:"quantity"`
	Condition    string `json:"condition"`
	Notes        string `json:"notes"`
	PurchaseDate string `json:"purchase_date"`
}

func ParseItemDetails(raw []byte) (ItemDetails, error) {
	var d ItemDetails
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("%w: %v", ErrInvalidItemDetails, err)
	}
	return d, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised date %q", s)
}

// placedItem builds the item and checks its category and placement against
// sc. Placement problems are reported as invalid item details.
func (d ItemDetails) placedItem(db *gorm.DB, sc scope.Scope, wardenID string) (models.InventoryItem, error) {
	item, err := d.Item(wardenID)
	if err != nil {
		return item, err
	}
	if _, err := uuid.Parse(item.CategoryID); err != nil {
		return item, fmt.Errorf("%w: invalid category_id", ErrInvalidItemDetails)
	}
	if err := db.First(&models.InventoryCategory{}, "id = ?", item.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item, fmt.Errorf("%w: unknown category", ErrInvalidItemDetails)
		}
		return item, err
	}
	hostelID, roomID, err := Placement(db, sc, d.HostelID, d.RoomID)
	if err != nil {
		if verr, ok := validation.As(err); ok {
			return item, fmt.Errorf("%w: %s", ErrInvalidItemDetails, verr.Error())
		}
		return item, err
	}
	item.HostelID = hostelID
	item.RoomID = roomID
	return item, nil
}

// Item builds the inventory row an approved request inserts. The row is
// always available and attributed to the requesting warden.
func (d ItemDetails) Item(wardenID string) (models.InventoryItem, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return models.InventoryItem{}, fmt.Errorf("%w: name is required", ErrInvalidItemDetails)
	}
	if strings.TrimSpace(d.CategoryID) == "" {
		return models.InventoryItem{}, fmt.Errorf("%w: category_id is required", ErrInvalidItemDetails)
	}
	qty := 1
	if d.Quantity != nil {
		qty = *d.Quantity
	}
	if qty < 1 {
		return models.InventoryItem{}, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidItemDetails)
	}
	condition := strings.TrimSpace(d.Condition)
	if condition == "" {
		condition = "good"
	}
	purchased, err := parseDate(d.PurchaseDate)
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("%w: %v", ErrInvalidItemDetails, err)
	}
	warden := wardenID
	return models.InventoryItem{
		Name:         name,
		CategoryID:   strings.TrimSpace(d.CategoryID),
		HostelID:     optional(d.HostelID),
		RoomID:       optional(d.RoomID),
		Quantity:     qty,
		Condition:    condition,
		Status:       models.ItemAvailable,
		AssignedBy:   &warden,
		Notes:        optional(d.Notes),
		PurchaseDate: purchased,
	}, nil
}

type SubmitApprovalInput struct {
	RequestType string          `json:"request_type" validate:"required,oneof=inventory_add maintenance_request room_assignment"`
	Description string          `json:"description" validate:"max=2000"`
	ItemDetails json.RawMessage `json:"item_details"`
}

// Submit files a pending request on behalf of the caller.
func (s *ApprovalService) Submit(ctx context.Context, sc scope.Scope, in SubmitApprovalInput) (models.WardenApproval, error) {
	if err := validation.Struct(in); err != nil {
		return models.WardenApproval{}, err
	}
	a := models.WardenApproval{
		WardenID:    sc.UserID,
		RequestType: in.RequestType,
		Description: strings.TrimSpace(in.Description),
		Status:      models.ApprovalPending,
		RequestDate: time.Now(),
	}
	if len(in.ItemDetails) > 0 {
		a.ItemDetails = datatypes.JSON(in.ItemDetails)
		if !a.HasItemDetails() {
			a.ItemDetails = nil
		}
	}

	db := s.DB.WithContext(ctx)
	if in.RequestType == models.RequestInventoryAdd {
		if !a.HasItemDetails() {
			return models.WardenApproval{}, fmt.Errorf("%w: item_details are required", ErrInvalidItemDetails)
		}
		d, err := ParseItemDetails(a.ItemDetails)
		if err != nil {
			return models.WardenApproval{}, err
		}
		if _, err := d.placedItem(db, sc, sc.UserID); err != nil {
			return models.WardenApproval{}, err
		}
	}

	if err := db.Create(&a).Error; err != nil {
		return models.WardenApproval{}, fmt.Errorf("create approval: %w", err)
	}
	s.notify(EventApprovalSubmitted, a)
	return a, nil
}

// ApprovalView is an approval enriched with its warden for display.
type ApprovalView struct {
	models.WardenApproval
	RequestTypeLabel string `json:"request_type_label"`
	WardenName       string `json:"warden_name"`
	WardenHostel     string `json:"warden_hostel"`
}

// List returns the approvals visible to sc, newest request first. An empty
// status lists every state.
func (s *ApprovalService) List(ctx context.Context, sc scope.Scope, status string) ([]ApprovalView, error) {
	q := s.DB.WithContext(ctx).Scopes(sc.Approvals()).Order("request_date DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []models.WardenApproval
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return s.enrich(ctx, rows)
}

func (s *ApprovalService) Get(ctx context.Context, sc scope.Scope, id string) (ApprovalView, error) {
	var a models.WardenApproval
	if err := s.DB.WithContext(ctx).Scopes(sc.Approvals()).First(&a, "warden_approvals.id = ?", id).Error; err != nil {
		return ApprovalView{}, notFound(err)
	}
	views, err := s.enrich(ctx, []models.WardenApproval{a})
	if err != nil {
		return ApprovalView{}, err
	}
	return views[0], nil
}

func (s *ApprovalService) enrich(ctx context.Context, rows []models.WardenApproval) ([]ApprovalView, error) {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.WardenID)
	}
	wardens := map[string]models.UserProfile{}
	if len(ids) > 0 {
		var profiles []models.UserProfile
		if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
			return nil, err
		}
		for _, p := range profiles {
			wardens[p.ID] = p
		}
	}
	out := make([]ApprovalView, 0, len(rows))
	for _, r := range rows {
		v := ApprovalView{
			WardenApproval:   r,
			RequestTypeLabel: models.RequestTypeLabel(r.RequestType),
			WardenName:       "Unknown Warden",
			WardenHostel:     "Unassigned",
		}
		if p, ok := wardens[r.WardenID]; ok {
			v.WardenName = p.FullName
			if p.AssignedHostel != nil && *p.AssignedHostel != "" {
				v.WardenHostel = *p.AssignedHostel
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// DecisionResult is the decided approval and, for an approved inventory_add,
// the inventory row it produced.
type DecisionResult struct {
	Approval models.WardenApproval `json:"approval"`
	Item     *models.InventoryItem `json:"item,omitempty"`
}

// Decide moves a pending approval to approved or rejected. The status change
// and any derived inventory insert commit together; a second decision on the
// same approval fails with ErrAlreadyDecided.
func (s *ApprovalService) Decide(ctx context.Context, adminID, id, decision string) (DecisionResult, error) {
	if decision != models.ApprovalApproved && decision != models.ApprovalRejected {
		return DecisionResult{}, ErrInvalidDecision
	}
	var res DecisionResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.WardenApproval
		if err := tx.First(&a, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if a.Status != models.ApprovalPending {
			return ErrAlreadyDecided
		}

		var item *models.InventoryItem
		if decision == models.ApprovalApproved && a.RequestType == models.RequestInventoryAdd && a.HasItemDetails() {
			d, err := ParseItemDetails(a.ItemDetails)
			if err != nil {
				return err
			}
			// placement is re-checked with the requesting warden's scope
			var warden models.UserProfile
			if err := tx.First(&warden, "id = ?", a.WardenID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: requesting warden no longer exists", ErrInvalidItemDetails)
				}
				return err
			}
			built, err := d.placedItem(tx, scope.For(warden), a.WardenID)
			if err != nil {
				return err
			}
			item = &built
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":        decision,
			"approval_date": now,
		}
		if decision == models.ApprovalApproved {
			updates["approved_by"] = adminID
		}
		result := tx.Model(&models.WardenApproval{}).
			Where("id = ? AND status = ?", id, models.ApprovalPending).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyDecided
		}

		if item != nil {
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("create inventory item: %w", err)
			}
		}
		if err := tx.First(&a, "id = ?", id).Error; err != nil {
			return err
		}
		res = DecisionResult{Approval: a, Item: item}
		return nil
	})
	if err != nil {
		return DecisionResult{}, err
	}
	s.notify(EventApprovalDecided, res.Approval)
	return res, nil
}
