package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"phoneshop_back_end/internal/handlers"
	"phoneshop_back_end/internal/middleware"
	"phoneshop_back_end/internal/utils"
)

// Deps regroupe ce dont les routes ont besoin, construit dans main.
type Deps struct {
	JWT       *utils.JWTManager
	RateLimit *middleware.RateLimit
	Upgrader  websocket.Upgrader
	Log       *slog.Logger

	Auth       *handlers.AuthHandler
	Users      *handlers.UserHandler
	Categories *handlers.CategoryHandler
	Products   *handlers.ProductHandler
	Carts      *handlers.CartHandler
	Orders     *handlers.OrderHandler
	Payments   *handlers.PaymentHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	auth := middleware.Auth(d.JWT, d.Log)
	admin := middleware.RequireAdmin()
	superAdmin := middleware.RequireSuperAdmin()
	customer := middleware.RequireCustomer()
	audit := func(action string) gin.HandlerFunc { return middleware.Audit(d.Log, action) }

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	a := r.Group("/auth")
	{
		a.POST("/register", d.RateLimit.Register(), d.Auth.Register)
		a.POST("/login", d.RateLimit.Login(), d.Auth.Login)
		a.POST("/forgot-password", d.RateLimit.ForgotPassword(), d.Auth.ForgotPassword)
		a.POST("/reset-password", d.Auth.ResetPassword)
	}

	cat := r.Group("/category")
	{
		cat.GET("/get-all", d.Categories.GetAll)
		cat.GET("/get-category-by-id/:id", d.Categories.GetByID)
		cat.POST("/create", auth, admin, audit("category.create"), d.Categories.Create)
		cat.PUT("/update/:id", auth, admin, audit("category.update"), d.Categories.Update)
		cat.DELETE("/delete/:id", auth, admin, audit("category.delete"), d.Categories.Delete)
	}

	p := r.Group("/product")
	{
		p.GET("/get-all", d.Products.GetAll)
		p.GET("/search", d.Products.Search)
		p.GET("/get-by-category-id/:id", d.Products.GetByCategory)
		p.GET("/get-by-product-id/:id", d.Products.GetByID)
		p.POST("/create", auth, admin, audit("product.create"), d.Products.Create)
		p.PUT("/update", auth, admin, audit("product.update"), d.Products.Update)
		p.DELETE("/delete/:id", auth, admin, audit("product.delete"), d.Products.Delete)
	}

	ct := r.Group("/cart", auth, customer)
	{
		ct.GET("", d.Carts.Get)
		ct.POST("/add", d.Carts.Add)
		ct.POST("/increment", d.Carts.Increment)
		ct.POST("/decrement", d.Carts.Decrement)
		ct.DELETE("/items/:productId", d.Carts.Remove)
		ct.DELETE("", d.Carts.Clear)
		ct.POST("/checkout", d.Carts.Checkout)
		ct.GET("/ws", d.Carts.WebSocket(d.Upgrader))
	}

	o := r.Group("/order", auth)
	{
		o.POST("/create", customer, d.Orders.Create)
		o.GET("/my-orders", d.Orders.MyOrders)
		o.PUT("/cancel/:id", customer, d.Orders.Cancel)
		o.GET("/filter", admin, d.Orders.Filter)
		o.PUT("/approve/:id", admin, audit("order.approve"), d.Orders.Approve)
		o.PUT("/reject/:id", admin, audit("order.reject"), d.Orders.Reject)
		o.PUT("/update-status/:id", admin, audit("order.update_status"), d.Orders.UpdateStatus)
		o.PUT("/update-item-status/:id", admin, audit("order.update_item_status"), d.Orders.UpdateItemStatus)
		o.GET("/:id", d.Orders.GetByID)
	}

	pay := r.Group("/payment", auth)
	{
		pay.POST("/process", customer, d.Payments.Process)
		pay.GET("/order/:id", d.Payments.GetByOrderID)
		pay.GET("/bank-qr/:id", customer, d.Payments.BankQR)
		pay.GET("/get-all", admin, d.Payments.GetAll)
		pay.GET("/revenue-stats", admin, d.Payments.RevenueStats)
	}

	r.POST("/address/save", auth, d.Users.SaveAddress)

	u := r.Group("/user", auth)
	{
		u.GET("/my-info", d.Users.MyInfo)
		u.GET("/get-all", admin, d.Users.GetAllCustomers)
		u.GET("/get-by-id/:id", admin, d.Users.GetCustomerByID)

		ad := u.Group("/admin", admin)
		ad.GET("/get-all", d.Users.GetAllAdmins)
		ad.POST("/create-normal-admin", superAdmin, audit("admin.create"), d.Users.CreateAdmin)
		ad.PUT("/update-normal-admin/:id", superAdmin, audit("admin.update"), d.Users.UpdateAdmin)
		ad.DELETE("/delete-normal-admin/:id", superAdmin, audit("admin.delete"), d.Users.DeleteAdmin)
		ad.PUT("/change-normal-admin-password/:id", superAdmin, audit("admin.change_password"), d.Users.ChangeAdminPassword)
	}
}
