package dashboard

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/scope"
)

type AdminView struct {
	Dashboard        string       `json:"dashboard"`
	TotalItems       int64        `json:"total_items"`
	ActiveWardens    int64        `json:"active_wardens"`
	LowStockItems    int64        `json:"low_stock_items"`
	PendingApprovals int64        `json:"pending_approvals"`
	RecentActivities []Activity   `json:"recent_activities"`
	WardenStats      []WardenStat `json:"warden_stats"`
}

type WardenView struct {
	Dashboard          string          `json:"dashboard"`
	HostelType         string          `json:"hostel_type"`
	Hostels            []models.Hostel `json:"hostels"`
	Summary            WardenSummary   `json:"summary"`
	CategoryStats      []CategoryStat  `json:"category_stats"`
	RecentTransactions []Transaction   `json:"recent_transactions"`
	SafetyRequests     *int            `json:"safety_requests,omitempty"`
	WellnessItems      *int            `json:"wellness_items,omitempty"`
}

type Service struct {
	DB *gorm.DB
}

var wardenRoles = []string{models.RoleMaleWarden, models.RoleFemaleWarden}

func (s *Service) Admin(ctx context.Context) (AdminView, error) {
	db := s.DB.WithContext(ctx)
	v := AdminView{Dashboard: models.RoleAdmin}

	admins := db.Model(&models.UserProfile{}).Select("id").Where("role = ?", models.RoleAdmin)
	if err := db.Model(&models.InventoryItem{}).Where("assigned_by IN (?)", admins).Count(&v.TotalItems).Error; err != nil {
		return v, fmt.Errorf("count admin items: %w", err)
	}
	if err := db.Model(&models.UserProfile{}).
		Where("role IN ? AND status = ?", wardenRoles, models.StatusActive).
		Count(&v.ActiveWardens).Error; err != nil {
		return v, fmt.Errorf("count wardens: %w", err)
	}
	if err := db.Model(&models.InventoryItem{}).Where("quantity < ?", LowStockThreshold).Count(&v.LowStockItems).Error; err != nil {
		return v, fmt.Errorf("count low stock: %w", err)
	}
	if err := db.Model(&models.WardenApproval{}).Where("status = ?", models.ApprovalPending).Count(&v.PendingApprovals).Error; err != nil {
		return v, fmt.Errorf("count pending: %w", err)
	}

	var recent []models.WardenApproval
	if err := db.Order("created_at DESC").Limit(RecentActivityLimit).Find(&recent).Error; err != nil {
		return v, fmt.Errorf("recent approvals: %w", err)
	}
	var wardens []models.UserProfile
	if err := db.Where("role IN ? AND status = ?", wardenRoles, models.StatusActive).
		Order("full_name ASC").Find(&wardens).Error; err != nil {
		return v, fmt.Errorf("list wardens: %w", err)
	}

	ids := make([]string, 0, len(recent))
	for _, a := range recent {
		ids = append(ids, a.WardenID)
	}
	profiles := map[string]models.UserProfile{}
	if len(ids) > 0 {
		var ps []models.UserProfile
		if err := db.Where("id IN ?", ids).Find(&ps).Error; err != nil {
			return v, fmt.Errorf("load requesters: %w", err)
		}
		for _, p := range ps {
			profiles[p.ID] = p
		}
	}
	v.RecentActivities = RecentActivities(recent, profiles, RecentActivityLimit)

	var approvals []models.WardenApproval
	if len(wardens) > 0 {
		wardenIDs := make([]string, 0, len(wardens))
		for _, w := range wardens {
			wardenIDs = append(wardenIDs, w.ID)
		}
		if err := db.Select("id", "warden_id", "status").Where("warden_id IN ?", wardenIDs).Find(&approvals).Error; err != nil {
			return v, fmt.Errorf("load warden approvals: %w", err)
		}
	}
	v.WardenStats = WardenStats(wardens, approvals)
	return v, nil
}

func (s *Service) Warden(ctx context.Context, sc scope.Scope) (WardenView, error) {
	db := s.DB.WithContext(ctx)
	v := WardenView{Dashboard: sc.Role, HostelType: sc.HostelType}

	if err := db.Scopes(sc.Hostels()).Order("name ASC").Find(&v.Hostels).Error; err != nil {
		return v, fmt.Errorf("load hostels: %w", err)
	}
	var rooms []models.Room
	if err := db.Scopes(sc.Rooms()).Find(&rooms).Error; err != nil {
		return v, fmt.Errorf("load rooms: %w", err)
	}
	var items []models.InventoryItem
	if err := db.Scopes(sc.Inventory()).Find(&items).Error; err != nil {
		return v, fmt.Errorf("load inventory: %w", err)
	}
	var categories []models.InventoryCategory
	if err := db.Order("name ASC").Find(&categories).Error; err != nil {
		return v, fmt.Errorf("load categories: %w", err)
	}

	roomNumbers := make(map[string]string, len(rooms))
	for _, r := range rooms {
		roomNumbers[r.ID] = r.RoomNumber
	}
	v.Summary = Summarize(rooms, items)
	v.CategoryStats = CategoryStats(categories, items)
	v.RecentTransactions = RecentTransactions(items, roomNumbers, sc.HostelType, RecentTransactionLimit)
	if sc.HostelType == models.HostelFemale {
		safety, wellness := SafetyRequests(items), WellnessItems(items)
		v.SafetyRequests, v.WellnessItems = &safety, &wellness
	}
	return v, nil
}

// For returns the dashboard matching the profile's role.
func (s *Service) For(ctx context.Context, p models.UserProfile) (any, error) {
	sc := scope.For(p)
	if sc.IsAdmin() {
		return s.Admin(ctx)
	}
	return s.Warden(ctx, sc)
}
