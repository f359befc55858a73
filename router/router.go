package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dineflow/config"
	"github.com/yeremiapane/dineflow/controllers"
	"github.com/yeremiapane/dineflow/kds"
	"github.com/yeremiapane/dineflow/middlewares"
	"github.com/yeremiapane/dineflow/models"
	"github.com/yeremiapane/dineflow/repository"
	"github.com/yeremiapane/dineflow/services"
	"github.com/yeremiapane/dineflow/utils"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs; main builds it once.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Orders    repository.OrderRepository
	Hub       *kds.Hub
	Tokens    *utils.TokenManager
	Blacklist *utils.TokenBlacklist
	Printer   services.Printer
}

func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if err := controllers.RegisterValidators(); err != nil {
		utils.ErrorLogger.WithError(err).Error("custom validators not registered")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigins))
	if cfg.RateLimitRPS > 0 {
		r.Use(middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit())
	}

	auth := &middlewares.Authenticator{
		Tokens:    d.Tokens,
		Users:     repository.NewUserRepository(d.DB),
		Blacklist: d.Blacklist,
	}

	var events services.EventEmitter
	if d.Hub != nil {
		events = d.Hub
	}
	orderSvc := services.NewOrderService(d.Orders, d.DB, events)
	financeSvc := services.NewFinanceService(d.Orders, d.DB)
	qrSvc := services.NewQRService(d.DB, cfg.QRBaseURL, cfg.QRSize)
	printSvc := services.NewPrintService(d.Orders, d.Printer, cfg.RestaurantName, cfg.Currency)

	userCtrl := controllers.NewUserController(d.DB, d.Tokens, d.Blacklist)
	orderCtrl := controllers.NewOrderController(orderSvc)
	kdsCtrl := controllers.NewKDSController(d.Hub, cfg.ReplayLimit, cfg.CORSOrigins)
	menuCtrl := controllers.NewMenuController(d.DB)
	qrCtrl := controllers.NewQRController(qrSvc)
	printCtrl := controllers.NewPrintController(printSvc)
	adminCtrl := controllers.NewAdminController(financeSvc, cfg.RestaurantName, cfg.Currency)
	paymentCtrl := controllers.NewPaymentController(orderSvc)
	inventoryCtrl := controllers.NewInventoryController(services.NewInventoryService(d.DB))
	configCtrl := controllers.NewConfigController(services.NewSettingsService(d.DB))
	notificationCtrl := controllers.NewNotificationController(d.DB)
	res := controllers.NewResources(d.DB)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	api.POST("/auth/login", middlewares.NewStrictRateLimiter().RateLimit(), userCtrl.Login)
	api.GET("/menu", menuCtrl.GetMenu)
	api.GET("/tables/:code/scan", qrCtrl.ScanTable)
	api.POST("/orders", orderCtrl.CreateOrder)
	api.GET("/orders/:id", orderCtrl.GetOrderByID)

	// Kitchen displays authenticate with ?token= on the handshake.
	r.GET("/ws/kitchen",
		middlewares.WebSocketAuthMiddleware(auth),
		middlewares.RequireRoles(models.RoleStaff, models.RoleChef),
		kdsCtrl.Stream)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	authed := api.Group("")
	authed.Use(middlewares.AuthMiddleware(auth))
	{
		authed.POST("/auth/logout", userCtrl.Logout)
		authed.GET("/auth/profile", userCtrl.Profile)
	}

	kitchen := authed.Group("")
	kitchen.Use(middlewares.RequireRoles(models.RoleStaff, models.RoleChef))
	{
		kitchen.PATCH("/orders/:id/status", orderCtrl.UpdateStatus)
		kitchen.GET("/kitchen/orders", orderCtrl.KitchenOrders)
		kitchen.GET("/kitchen/events", kdsCtrl.Events)
		kitchen.GET("/admin/orders", orderCtrl.GetAllOrders)
		kitchen.POST("/print/orders/:id", printCtrl.PrintOrder)
	}

	// -- STAFF (catalogue, floor, inventory, payments) --
	staff := authed.Group("/admin")
	staff.Use(middlewares.RequireRoles(models.RoleStaff))
	{
		res.Categories.Routes(staff, "/categories")
		res.Dishes.Routes(staff, "/dishes")
		res.Tables.Routes(staff, "/tables")
		res.Rooms.Routes(staff, "/rooms")
		res.Ingredients.Routes(staff, "/ingredients")
		res.Suppliers.Routes(staff, "/suppliers")
		staff.POST("/ingredients/:id/adjust", inventoryCtrl.Adjust)
		staff.GET("/inventory/low-stock", inventoryCtrl.LowStock)

		staff.GET("/payments", res.Payments.List)
		staff.GET("/payments/:id", res.Payments.Get)
		staff.POST("/payments", paymentCtrl.CreatePayment)

		staff.GET("/notifications", res.Notifications.List)
		staff.GET("/notifications/:id", res.Notifications.Get)
		staff.POST("/notifications/:id/read", notificationCtrl.MarkRead)

		staff.GET("/qr/tables/:id", qrCtrl.TableQR)
		staff.GET("/qr/tables/:id/svg", qrCtrl.TableSVG)
		staff.GET("/qr/rooms/:id", qrCtrl.RoomQR)
		staff.POST("/qr/batch", qrCtrl.Batch)
	}

	// -- PARTNER (read own directory) --
	partners := authed.Group("/admin")
	partners.Use(middlewares.RequireRoles(models.RolePartner))
	{
		partners.GET("/partners", res.Partners.List)
		partners.GET("/partners/:id", res.Partners.Get)
	}

	// -- ADMIN ONLY --
	admin := authed.Group("/admin")
	admin.Use(middlewares.RequireRoles())
	{
		admin.GET("/dashboard", adminCtrl.GetDashboardStats)
		admin.GET("/finance/summary", adminCtrl.FinanceSummary)
		admin.GET("/finance/report.pdf", adminCtrl.FinanceReport)

		admin.GET("/users", userCtrl.ListUsers)
		admin.GET("/users/:id", userCtrl.GetUser)
		admin.POST("/users", userCtrl.CreateUser)
		admin.PUT("/users/:id", userCtrl.UpdateUser)
		admin.DELETE("/users/:id", userCtrl.DeleteUser)

		res.Staff.Routes(admin, "/staff")
		res.Expenses.Routes(admin, "/expenses")

		admin.POST("/partners", res.Partners.Create)
		admin.PUT("/partners/:id", res.Partners.Update)
		admin.DELETE("/partners/:id", res.Partners.Delete)

		admin.DELETE("/payments/:id", res.Payments.Delete)

		admin.POST("/notifications", res.Notifications.Create)
		admin.PUT("/notifications/:id", res.Notifications.Update)
		admin.DELETE("/notifications/:id", res.Notifications.Delete)

		admin.GET("/config", configCtrl.List)
		admin.PUT("/config/:key", configCtrl.Set)
	}

	return r
}
