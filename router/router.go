package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/campushub/campus-services/controllers"
	"github.com/campushub/campus-services/middlewares"
	"github.com/campushub/campus-services/models"
	"github.com/campushub/campus-services/services"
)

func SetupRouter(db *gorm.DB, gateway services.PaymentGateway) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(50, 100).RateLimit())

	notifier := services.NewNotificationService(db)

	authCtrl := controllers.NewAuthController(db)
	orderCtrl := controllers.NewFoodOrderController(db, gateway, notifier)
	itemCtrl := controllers.NewFoodItemController(db)
	notifCtrl := controllers.NewNotificationController(db)
	materialCtrl := controllers.NewStudyMaterialController(db)
	boardingCtrl := controllers.NewBoardingPlaceController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	public := r.Group("/auth")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", authCtrl.Register)
		public.POST("/login", authCtrl.Login)
	}

	r.GET("/food-items", itemCtrl.GetAllFoodItems)
	r.GET("/boarding-places", boardingCtrl.GetApprovedPlaces)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/auth/profile", authCtrl.GetProfile)

	auth.GET("/notifications", notifCtrl.GetMyNotifications)
	auth.PATCH("/notifications/:notif_id/read", notifCtrl.MarkRead)
	auth.DELETE("/notifications/:notif_id", notifCtrl.DeleteNotification)

	auth.GET("/study-materials", materialCtrl.GetApprovedMaterials)
	auth.POST("/study-materials", materialCtrl.CreateMaterial)
	auth.DELETE("/study-materials/:material_id", materialCtrl.DeleteMaterial)

	auth.POST("/boarding-places", boardingCtrl.CreatePlace)
	auth.DELETE("/boarding-places/:place_id", boardingCtrl.DeletePlace)

	// ORDERS (student)
	student := auth.Group("/")
	student.Use(middlewares.RequireRole(models.RoleStudent))
	{
		student.POST("/orders/cod", orderCtrl.CreateCODOrder)
		student.POST("/orders/online/session", orderCtrl.CreateCheckoutSession)
		student.POST("/orders/online/confirm", orderCtrl.ConfirmOnlineOrder)
		student.GET("/orders", orderCtrl.GetStudentOrders)
		student.POST("/orders/:order_id/cancel", orderCtrl.RequestCancellation)
		student.DELETE("/orders/:order_id", orderCtrl.SoftDeleteByStudent)
	}

	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)

	// ORDERS (vendor)
	vendor := auth.Group("/")
	vendor.Use(middlewares.RequireRole(models.RoleVendor))
	{
		vendor.GET("/vendor/orders", orderCtrl.GetVendorOrders)
		vendor.GET("/vendor/food-items", itemCtrl.GetVendorItems)
		vendor.POST("/vendor/food-items", itemCtrl.CreateFoodItem)
		vendor.PUT("/vendor/food-items/:item_id", itemCtrl.UpdateFoodItem)
		vendor.DELETE("/vendor/food-items/:item_id", itemCtrl.DeleteFoodItem)
		vendor.POST("/orders/:order_id/ship", orderCtrl.MarkShipped)
	}

	// Shared admin/vendor status override.
	staff := auth.Group("/")
	staff.Use(middlewares.RequireRole(models.RoleAdmin, models.RoleVendor))
	{
		staff.PUT("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	}

	// ORDERS (admin)
	admin := auth.Group("/")
	admin.Use(middlewares.RequireRole(models.RoleAdmin))
	{
		admin.GET("/admin/orders", orderCtrl.GetAllOrders)
		admin.POST("/orders/:order_id/cancel/resolve", orderCtrl.ResolveCancellation)
		admin.DELETE("/admin/orders/:order_id", orderCtrl.HardDeleteByAdmin)
		admin.POST("/orders/:order_id/simulate", orderCtrl.SimulateProgression)
		admin.PATCH("/study-materials/:material_id/approve", materialCtrl.ApproveMaterial)
		admin.PATCH("/boarding-places/:place_id/approve", boardingCtrl.ApprovePlace)
	}

	return r
}
