package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/codes"
	"github.com/Ostech2/uhsms/internal/config"
	"github.com/Ostech2/uhsms/internal/controllers"
	"github.com/Ostech2/uhsms/internal/dashboard"
	"github.com/Ostech2/uhsms/internal/mail"
	"github.com/Ostech2/uhsms/internal/middleware"
	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/services"
	"github.com/Ostech2/uhsms/internal/ws"
)

// Deps are the long-lived collaborators the HTTP layer needs beyond the
// database.
type Deps struct {
	Codes  codes.Store
	Mailer mail.Mailer
	Hub    *ws.ApprovalHub
}

func Register(r *gin.Engine, db *gorm.DB, cfg *config.Config, deps Deps) {
	sessions := &services.SessionResolver{DB: db}
	users := &services.UserService{DB: db}
	passwords := &services.PasswordService{DB: db, Codes: deps.Codes, Mailer: deps.Mailer, TTL: cfg.VerificationCodeTTL}
	approvals := &services.ApprovalService{DB: db}
	if deps.Hub != nil {
		approvals.Notifier = deps.Hub
	}

	// Controllers
	authCtrl := &controllers.AuthController{
		DB:            db,
		Sessions:      sessions,
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.RefreshJWTSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}
	passwordCtrl := &controllers.PasswordController{Passwords: passwords}
	functionsCtrl := &controllers.FunctionsController{Users: users, Passwords: passwords}
	userCtrl := &controllers.UserController{DB: db, Users: users}
	hostelCtrl := &controllers.HostelController{DB: db}
	roomCtrl := &controllers.RoomController{DB: db}
	occupantCtrl := &controllers.OccupantController{Occupants: &services.OccupantService{DB: db}}
	inventoryCtrl := &controllers.InventoryController{DB: db}
	approvalCtrl := &controllers.ApprovalController{Approvals: approvals}
	dashboardCtrl := &controllers.DashboardController{Dashboards: &dashboard.Service{DB: db}}

	// Public
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", authCtrl.Login)
		auth.POST("/refresh", authCtrl.Refresh)
	}

	// Protected
	authMW := middleware.AuthMiddleware(sessions, middleware.AuthConfig{JWTSecret: cfg.JWTSecret})
	api := r.Group("/api/v1", authMW)
	{
		api.GET("/auth/me", authCtrl.Me)
		api.POST("/auth/logout", authCtrl.Logout)
		api.POST("/auth/password/request", passwordCtrl.RequestCode)
		api.POST("/auth/password/change", passwordCtrl.Change)
		api.GET("/session", authCtrl.Session)
		api.GET("/dashboard", dashboardCtrl.Get)

		// Callable procedures; create-user checks user_roles itself
		api.POST("/functions/create-user", functionsCtrl.CreateUser)
		api.POST("/functions/send-verification-token", functionsCtrl.SendVerificationToken)

		if deps.Hub != nil {
			api.GET("/ws/approvals", ws.ApprovalHandler(deps.Hub))
		}

		// Wardens and admins; rows are filtered by the caller's scope
		staff := api.Group("", middleware.RequireRoles(models.RoleMaleWarden, models.RoleFemaleWarden))
		{
			staff.GET("/hostels", hostelCtrl.List)
			staff.POST("/hostels", hostelCtrl.Create)
			staff.GET("/hostels/:id", hostelCtrl.Get)
			staff.PUT("/hostels/:id", hostelCtrl.Update)
			staff.DELETE("/hostels/:id", hostelCtrl.Delete)

			staff.GET("/rooms", roomCtrl.List)
			staff.POST("/rooms", roomCtrl.Create)
			staff.GET("/rooms/:id", roomCtrl.Get)
			staff.PUT("/rooms/:id", roomCtrl.Update)
			staff.DELETE("/rooms/:id", roomCtrl.Delete)

			staff.GET("/occupants", occupantCtrl.List)
			staff.POST("/occupants", occupantCtrl.Register)
			staff.POST("/occupants/import", occupantCtrl.Import)
			staff.POST("/occupants/:id/checkout", occupantCtrl.CheckOut)
			staff.DELETE("/occupants/:id", occupantCtrl.Delete)

			staff.GET("/inventory/categories", inventoryCtrl.ListCategories)
			staff.GET("/inventory/items", inventoryCtrl.ListItems)
			staff.POST("/inventory/items", inventoryCtrl.CreateItem)
			staff.GET("/inventory/items/:id", inventoryCtrl.GetItem)
			staff.PUT("/inventory/items/:id", inventoryCtrl.UpdateItem)
			staff.DELETE("/inventory/items/:id", inventoryCtrl.DeleteItem)

			staff.GET("/approvals", approvalCtrl.List)
			staff.POST("/approvals", approvalCtrl.Submit)
			staff.GET("/approvals/:id", approvalCtrl.Get)
		}

		// Admin-only
		admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
		{
			admin.GET("/users", userCtrl.List)
			admin.POST("/users", userCtrl.Create)
			admin.GET("/users/:id", userCtrl.Get)
			admin.PUT("/users/:id", userCtrl.Update)
			admin.POST("/users/:id/toggle-status", userCtrl.ToggleStatus)
			admin.DELETE("/users/:id", userCtrl.Delete)

			admin.POST("/inventory/categories", inventoryCtrl.CreateCategory)
			admin.POST("/approvals/:id/decision", approvalCtrl.Decide)
		}
	}
}
