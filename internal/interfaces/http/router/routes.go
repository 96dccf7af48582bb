package router

import (
	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the HTTP handlers mounted under the versioned API
type Handlers struct {
	AdminAuth    *handler.AdminAuthHandler
	CustomerAuth *handler.CustomerAuthHandler
	User         *handler.UserHandler
	Product      *handler.ProductHandler
	Order        *handler.OrderHandler
	APIKey       *handler.APIKeyHandler
	Language     *handler.LanguageHandler
	Translation  *handler.TranslationHandler
	Theme        *handler.ThemeHandler
	Media        *handler.MediaHandler
	Page         *handler.PageHandler
	Review       *handler.ReviewHandler
	Favorite     *handler.FavoriteHandler
}

// Guards holds the authentication and throttling middleware of the two APIs.
// A nil AuthRateLimit disables the stricter limiter on sign-in endpoints.
type Guards struct {
	Admin            gin.HandlerFunc
	Customer         gin.HandlerFunc
	OptionalCustomer gin.HandlerFunc
	AuthRateLimit    gin.HandlerFunc
}

// MediaUploadPath is the multipart upload route, the one route allowed a
// larger request body
const MediaUploadPath = "/admin/media/upload"

// AdminRoutes builds the dashboard API. Everything except sign-in and token
// refresh requires an admin token; user and secret management are limited to
// owners and admins.
func AdminRoutes(h Handlers, g Guards) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin")

	admin.Group("admin-auth", "/auth").
		Use(g.AuthRateLimit).
		POST("/login", h.AdminAuth.Login).
		POST("/refresh", h.AdminAuth.RefreshToken)

	session := admin.Group("admin-session", "").Use(g.Admin)
	session.Group("admin-account", "/auth").
		POST("/logout", h.AdminAuth.Logout).
		GET("/me", h.AdminAuth.Me).
		PUT("/password", h.AdminAuth.ChangePassword)

	session.Group("users", "/users").
		Use(middleware.RequireRole("owner", "admin")).
		GET("", h.User.List).
		POST("", h.User.Create).
		GET("/:id", h.User.Get).
		PUT("/:id", h.User.Update).
		POST("/:id/activate", h.User.Activate).
		POST("/:id/deactivate", h.User.Deactivate).
		DELETE("/:id", h.User.Delete)

	session.Group("api-keys", "/api-keys").
		Use(middleware.RequireRole("owner", "admin")).
		GET("", h.APIKey.List).
		POST("", h.APIKey.Create).
		GET("/:id", h.APIKey.Get).
		PUT("/:id", h.APIKey.Update).
		DELETE("/:id", h.APIKey.Delete).
		POST("/:id/rotate", h.APIKey.Rotate).
		POST("/:id/reveal", h.APIKey.Reveal).
		POST("/:id/activate", h.APIKey.Activate).
		POST("/:id/deactivate", h.APIKey.Deactivate)

	session.Group("products", "/products").
		GET("", h.Product.List).
		POST("", h.Product.Create).
		GET("/:id", h.Product.Get).
		PUT("/:id", h.Product.Update).
		DELETE("/:id", h.Product.Delete).
		POST("/:id/activate", h.Product.Activate).
		POST("/:id/archive", h.Product.Archive).
		POST("/:id/draft", h.Product.RestoreToDraft).
		POST("/:id/stock", h.Product.AdjustStock)

	session.Group("orders", "/orders").
		GET("", h.Order.List).
		GET("/stats", h.Order.Stats).
		GET("/by-number/:number", h.Order.GetByNumber).
		GET("/:id", h.Order.Get).
		PUT("/:id/status", h.Order.UpdateStatus).
		POST("/:id/cancel", h.Order.Cancel).
		POST("/:id/paid", h.Order.MarkPaid).
		PUT("/:id/shipping", h.Order.UpdateShipping).
		POST("/:id/notes", h.Order.AddNote).
		GET("/:id/invoice", h.Order.Invoice)

	session.Group("languages", "/languages").
		GET("", h.Language.List).
		POST("", h.Language.Create).
		GET("/:code", h.Language.Get).
		PUT("/:code", h.Language.Update).
		DELETE("/:code", h.Language.Delete).
		POST("/:code/default", h.Language.SetDefault)

	session.Group("translations", "/translations").
		GET("", h.Translation.List).
		PUT("", h.Translation.Upsert).
		POST("/bulk", h.Translation.BulkUpsert).
		POST("/import", h.Translation.Import).
		GET("/export", h.Translation.Export).
		GET("/missing", h.Translation.Missing).
		DELETE("/:id", h.Translation.Delete)

	session.Group("themes", "/themes").
		GET("", h.Theme.List).
		POST("", h.Theme.Create).
		GET("/:id", h.Theme.Get).
		PUT("/:id", h.Theme.Update).
		DELETE("/:id", h.Theme.Delete).
		POST("/:id/activate", h.Theme.Activate).
		POST("/:id/duplicate", h.Theme.Duplicate)

	session.Group("media", "/media").
		GET("", h.Media.List).
		POST("/upload-url", h.Media.InitiateUpload).
		POST("/upload", h.Media.Upload).
		GET("/:id", h.Media.Get).
		PUT("/:id", h.Media.UpdateMetadata).
		DELETE("/:id", h.Media.Delete).
		POST("/:id/confirm", h.Media.ConfirmUpload).
		GET("/:id/download-url", h.Media.DownloadURL)

	session.Group("pages", "/pages").
		GET("", h.Page.List).
		POST("", h.Page.Create).
		GET("/:id", h.Page.Get).
		PUT("/:id", h.Page.Update).
		DELETE("/:id", h.Page.Delete).
		POST("/:id/publish", h.Page.Publish).
		POST("/:id/unpublish", h.Page.Unpublish).
		POST("/:id/blocks", h.Page.AddBlock).
		PUT("/:id/blocks/reorder", h.Page.ReorderBlocks).
		PUT("/:id/blocks/:block_id", h.Page.UpdateBlock).
		DELETE("/:id/blocks/:block_id", h.Page.DeleteBlock).
		PUT("/:id/blocks/:block_id/translation", h.Page.UpdateTranslatedBlock).
		GET("/:id/blocks/:block_id/fields", h.Page.TranslatableFields).
		GET("/:id/translations", h.Page.ListTranslations).
		POST("/:id/translations", h.Page.CreateTranslation)

	session.Group("reviews", "/reviews").
		GET("", h.Review.List).
		POST("/bulk-moderate", h.Review.BulkModerate).
		GET("/:id", h.Review.Get).
		DELETE("/:id", h.Review.Delete).
		POST("/:id/approve", h.Review.Approve).
		POST("/:id/reject", h.Review.Reject).
		POST("/:id/spam", h.Review.MarkSpam).
		PUT("/:id/reply", h.Review.Reply)

	return admin
}

// StoreRoutes builds the storefront API. Browsing, checkout and review
// submission work for guests; a customer token, when sent, is picked up by
// OptionalCustomer. Account, order history and favorites need a customer.
func StoreRoutes(h Handlers, g Guards) *DomainGroup {
	store := NewDomainGroup("store", "/store").Use(g.OptionalCustomer)

	store.Group("store-auth", "/auth").
		Use(g.AuthRateLimit).
		POST("/register", h.CustomerAuth.Register).
		POST("/login", h.CustomerAuth.Login).
		POST("/refresh", h.CustomerAuth.RefreshToken)

	store.Group("catalog", "/products").
		GET("", h.Product.StoreList).
		GET("/categories", h.Product.Categories).
		GET("/:slug", h.Product.StoreGet).
		GET("/:slug/reviews", h.Review.ListForProduct).
		GET("/:slug/reviews/summary", h.Review.Summary)

	store.POST("/orders", h.Order.Place).
		POST("/reviews", h.Review.Submit).
		GET("/languages", h.Language.StoreList).
		GET("/translations/:lang/:namespace", h.Translation.Bundle).
		GET("/theme", h.Theme.Active).
		GET("/pages/:slug", h.Page.Render)

	account := store.Group("account", "").Use(g.Customer)
	account.Group("customer", "/auth").
		POST("/logout", h.CustomerAuth.Logout).
		GET("/me", h.CustomerAuth.Me).
		PUT("/me", h.CustomerAuth.UpdateProfile)

	account.Group("my-orders", "/orders").
		GET("", h.Order.ListMine).
		GET("/:id", h.Order.GetMine).
		POST("/:id/cancel", h.Order.CancelMine)

	account.Group("favorites", "/favorites").
		GET("", h.Favorite.List).
		POST("", h.Favorite.Add).
		POST("/contains", h.Favorite.Contains).
		DELETE("/:product_id", h.Favorite.Remove)

	return store
}
