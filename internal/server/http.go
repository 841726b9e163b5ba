package server

import (
	"net/http"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/auth"
	cartH "github.com/fekuna/omnipos-storefront/internal/cart/handler"
	catH "github.com/fekuna/omnipos-storefront/internal/category/handler"
	checkoutH "github.com/fekuna/omnipos-storefront/internal/checkout/handler"
	feedbackH "github.com/fekuna/omnipos-storefront/internal/feedback/handler"
	invH "github.com/fekuna/omnipos-storefront/internal/inventory/handler"
	orderH "github.com/fekuna/omnipos-storefront/internal/order/handler"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/middleware"
	"github.com/fekuna/omnipos-storefront/internal/pkg/response"
	prodH "github.com/fekuna/omnipos-storefront/internal/product/handler"
	profileH "github.com/fekuna/omnipos-storefront/internal/profile/handler"
	reminderH "github.com/fekuna/omnipos-storefront/internal/reminder/handler"
	"github.com/fekuna/omnipos-storefront/internal/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	Category  *catH.CategoryHandler
	Product   *prodH.ProductHandler
	Inventory *invH.InventoryHandler
	Cart      *cartH.CartHandler
	Checkout  *checkoutH.CheckoutHandler
	Order     *orderH.OrderHandler
	Profile   *profileH.ProfileHandler
	Reminder  *reminderH.ReminderHandler
	Feedback  *feedbackH.FeedbackHandler
}

type RouterConfig struct {
	AllowedOrigins []string
	Sessions       session.Store
	Cookie         session.CookieConfig
	Tokens         *auth.TokenManager
}

func NewRouter(cfg RouterConfig, h Handlers, log logger.ZapLogger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.AccessLog(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	admin := r.Group("/admin", auth.RequireStaff(cfg.Tokens))
	{
		admin.POST("/categories", h.Category.CreateCategory)
		admin.DELETE("/categories/:id", h.Category.DeleteCategory)

		admin.POST("/products", h.Product.CreateProduct)
		admin.POST("/products/discount", h.Product.ApplyDiscount)
		admin.PUT("/products/:id", h.Product.UpdateProduct)
		admin.DELETE("/products/:id", h.Product.DeleteProduct)
		admin.POST("/products/:id/image", h.Product.UploadImage)
		admin.POST("/products/:id/stock", h.Inventory.AdjustStock)
		admin.GET("/products/:id/movements", h.Inventory.ListMovements)

		admin.GET("/orders/:id", h.Order.GetOrder)
		admin.PUT("/orders/:id/status", h.Order.UpdateStatus)
	}

	shop := r.Group("/", session.Middleware(cfg.Sessions, cfg.Cookie), auth.SessionIdentity())
	{
		shop.GET("/", h.Product.ListProducts)
		shop.GET("/search", h.Product.SearchProducts)
		shop.GET("/products/:slug", h.Product.GetProduct)
		shop.GET("/categories", h.Category.ListCategories)
		shop.GET("/categories/:slug", h.Product.GetCategory)
		shop.GET("/messages", popMessages(log))

		cart := shop.Group("/cart")
		cart.POST("/add_product", h.Cart.AddProduct)
		cart.POST("/remove_product", h.Cart.RemoveProduct)
		cart.POST("/update_quantity", h.Cart.ChangeQuantity)
		cart.POST("/price_changed", h.Cart.PriceChanged)
		cart.GET("/detail", h.Cart.Detail)

		shop.GET(checkoutH.PlaceOrderPath, h.Checkout.PlaceOrderForm)
		shop.POST(checkoutH.PlaceOrderPath, h.Checkout.PlaceOrder)
		shop.GET(checkoutH.CheckOrderPath, h.Checkout.CheckOrder)
		shop.POST(checkoutH.CheckOrderPath, h.Checkout.ConfirmOrder)
		shop.GET("/orders/history", auth.RequireLogin(), h.Order.History)

		shop.POST("/profile/registration", h.Profile.Register)
		shop.POST("/profile/login", h.Profile.Login)
		shop.POST("/profile/logout", h.Profile.Logout)
		shop.GET(profileH.DetailPath, auth.RequireLogin(), h.Profile.Detail)
		shop.POST(profileH.DetailPath, auth.RequireLogin(), h.Profile.Update)

		shop.POST("/remindme", h.Reminder.AddReminder)
		shop.GET("/feedback", h.Feedback.Form)
		shop.POST("/feedback", h.Feedback.Send)
	}

	return r
}

// popMessages hands the queued flash messages to the client once.
func popMessages(log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		msgs, err := session.FromContext(c).PopMessages(c.Request.Context())
		if err != nil {
			log.Error("failed to read flash messages", zap.Error(err))
			response.InternalError(c)
			return
		}
		if msgs == nil {
			msgs = []session.Message{}
		}
		c.JSON(http.StatusOK, gin.H{"messages": msgs})
	}
}
