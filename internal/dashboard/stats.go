// Package dashboard derives the per-role dashboard figures from role-scoped
// rows. The aggregation functions are pure; Service does the fetching.
package dashboard

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Ostech2/uhsms/internal/models"
)

const (
	LowStockThreshold      = 5
	RecentActivityLimit    = 10
	RecentTransactionLimit = 4
)

// Efficiency is the rounded percentage of approved requests, 0 without any.
func Efficiency(approved, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(approved)*100/float64(total) + 0.5))
}

func EfficiencyStatus(efficiency int) string {
	switch {
	case efficiency > 90:
		return "Excellent"
	case efficiency > 75:
		return "Very Good"
	case efficiency > 60:
		return "Good"
	default:
		return "Needs Improvement"
	}
}

// StockLevel grades a category by the share of its items still available.
func StockLevel(available, total int) string {
	switch {
	case total == 0:
		return "No Stock"
	case float64(available) < float64(total)*0.3:
		return "Low Stock"
	case float64(available) < float64(total)*0.7:
		return "Adequate"
	default:
		return "Good"
	}
}

type Activity struct {
	Action string    `json:"action"`
	User   string    `json:"user"`
	Role   string    `json:"role"`
	Item   string    `json:"item"`
	Time   time.Time `json:"time"`
	Status string    `json:"status"`
}

func activityAction(status string) string {
	switch status {
	case models.ApprovalApproved:
		return "Approved Request"
	case models.ApprovalRejected:
		return "Rejected Request"
	default:
		return "Pending Request"
	}
}

// RecentActivities lists the newest approvals by creation time.
func RecentActivities(approvals []models.WardenApproval, profiles map[string]models.UserProfile, limit int) []Activity {
	sorted := append([]models.WardenApproval(nil), approvals...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]Activity, 0, len(sorted))
	for _, a := range sorted {
		act := Activity{
			Action: activityAction(a.Status),
			User:   "Unknown Warden",
			Item:   a.Description,
			Time:   a.CreatedAt,
			Status: a.Status,
		}
		if act.Item == "" {
			act.Item = "No description"
		}
		if p, ok := profiles[a.WardenID]; ok {
			act.User = p.FullName
			act.Role = p.Role
		}
		out = append(out, act)
	}
	return out
}

type WardenStat struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Hostel     string `json:"hostel"`
	Approved   int    `json:"approved"`
	Total      int    `json:"total"`
	Efficiency int    `json:"efficiency"`
	Status     string `json:"status"`
}

// WardenStats rates each warden by the share of their requests approved.
func WardenStats(wardens []models.UserProfile, approvals []models.WardenApproval) []WardenStat {
	type tally struct{ approved, total int }
	counts := map[string]*tally{}
	for _, a := range approvals {
		t := counts[a.WardenID]
		if t == nil {
			t = &tally{}
			counts[a.WardenID] = t
		}
		t.total++
		if a.Status == models.ApprovalApproved {
			t.approved++
		}
	}
	out := make([]WardenStat, 0, len(wardens))
	for _, w := range wardens {
		s := WardenStat{ID: w.ID, Name: w.FullName, Role: w.Role, Hostel: "Unassigned"}
		if w.AssignedHostel != nil && *w.AssignedHostel != "" {
			s.Hostel = *w.AssignedHostel
		}
		if t := counts[w.ID]; t != nil {
			s.Approved, s.Total = t.approved, t.total
		}
		s.Efficiency = Efficiency(s.Approved, s.Total)
		s.Status = EfficiencyStatus(s.Efficiency)
		out = append(out, s)
	}
	return out
}

type CategoryStat struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
	Available int    `json:"available"`
	Status    string `json:"status"`
}

func CategoryStats(categories []models.InventoryCategory, items []models.InventoryItem) []CategoryStat {
	out := make([]CategoryStat, 0, len(categories))
	for _, c := range categories {
		s := CategoryStat{ID: c.ID, Name: c.Name}
		for _, it := range items {
			if it.CategoryID != c.ID {
				continue
			}
			s.Count++
			if it.Status == models.ItemAvailable {
				s.Available++
			}
		}
		s.Status = StockLevel(s.Available, s.Count)
		out = append(out, s)
	}
	return out
}

type Transaction struct {
	Type     string    `json:"type"`
	Item     string    `json:"item"`
	Quantity int       `json:"quantity"`
	Room     string    `json:"room"`
	Status   string    `json:"status"`
	Time     time.Time `json:"time"`
}

// RecentTransactions lists the most recently updated items. Maintenance is
// labelled as a safety check on female dashboards.
func RecentTransactions(items []models.InventoryItem, roomNumbers map[string]string, hostelType string, limit int) []Transaction {
	sorted := append([]models.InventoryItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt) })
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	maintenance := "Maintenance"
	if hostelType == models.HostelFemale {
		maintenance = "Safety Check"
	}
	out := make([]Transaction, 0, len(sorted))
	for _, it := range sorted {
		t := Transaction{Type: "Updated", Item: it.Name, Quantity: it.Quantity, Room: "Unassigned", Status: it.Status, Time: it.UpdatedAt}
		switch it.Status {
		case models.ItemAssigned:
			t.Type = "Issued"
		case models.ItemMaintenance:
			t.Type = maintenance
		}
		if it.RoomID != nil {
			if n, ok := roomNumbers[*it.RoomID]; ok {
				t.Room = "Room " + n
			}
		}
		out = append(out, t)
	}
	return out
}

type WardenSummary struct {
	AssignedRooms    int `json:"assigned_rooms"`
	TotalItems       int `json:"total_items"`
	AvailableItems   int `json:"available_items"`
	MaintenanceItems int `json:"maintenance_items"`
}

func Summarize(rooms []models.Room, items []models.InventoryItem) WardenSummary {
	s := WardenSummary{AssignedRooms: len(rooms), TotalItems: len(items)}
	for _, it := range items {
		if it.Status == models.ItemAvailable {
			s.AvailableItems++
		}
		if it.NeedsMaintenance() {
			s.MaintenanceItems++
		}
	}
	return s
}

// SafetyRequests counts maintenance items whose name mentions safety.
func SafetyRequests(items []models.InventoryItem) int {
	n := 0
	for _, it := range items {
		if it.Status == models.ItemMaintenance && strings.Contains(strings.ToLower(it.Name), "safety") {
			n++
		}
	}
	return n
}

func WellnessItems(items []models.InventoryItem) int {
	n := 0
	for _, it := range items {
		name := strings.ToLower(it.Name)
		if strings.Contains(name, "wellness") || strings.Contains(name, "health") {
			n++
		}
	}
	return n
}
