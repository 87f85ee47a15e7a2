package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
	"backend/internal/paystack"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsurePostIndexes(db); err != nil {
		log.Printf("post index warning: %v", err)
	}

	gateway := paystack.NewClient(config.AppEnv.PaystackSecretKey)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.POST("/auth/register", handlers.Register(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL))
	r.POST("/auth/login", handlers.Login(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL))
	r.POST("/auth/refresh", handlers.Refresh(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL))
	r.POST("/auth/logout", handlers.Logout(db))
	r.GET("/auth/me", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.GetMe(db))

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/:slug", handlers.GetProduct(db))
	r.GET("/categories", handlers.GetCategories(db))

	r.GET("/posts", handlers.GetPosts(db))
	r.GET("/posts/:slug", handlers.GetPost(db))

	// Webhook authenticates by signature, not by bearer token.
	r.POST("/payments/webhook", handlers.PaystackWebhook(db, config.AppEnv.PaystackWebhookKey))

	orders := r.Group("/orders")
	orders.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		orders.POST("", handlers.CreateOrder(db, config.AppEnv.DeliveryFee))
		orders.GET("/mine", handlers.GetMyOrders(db))
		orders.GET("/:orderNumber", handlers.GetOrder(db))
		orders.DELETE("/:orderNumber", handlers.CancelOrder(db))
	}

	payments := r.Group("/payments")
	payments.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		payments.POST("/initialize", handlers.InitializePayment(db, gateway, config.AppEnv.Currency, config.AppEnv.PaymentCallbackURL))
		payments.GET("/verify/:reference", handlers.VerifyPayment(db, gateway))
	}

	user := r.Group("/user")
	user.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		user.GET("/addresses", handlers.GetUserAddresses(db))
		user.POST("/addresses", handlers.CreateUserAddress(db))
		user.PUT("/addresses/:id", handlers.UpdateUserAddress(db))
		user.DELETE("/addresses/:id", handlers.DeleteUserAddress(db))

		user.GET("/favorites", handlers.GetUserFavorites(db))
		user.POST("/favorites", handlers.AddUserFavorite(db))
		user.DELETE("/favorites/:id", handlers.DeleteUserFavorite(db))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/products", handlers.GetAllProducts(db))
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.GET("/categories", handlers.GetAllCategories(db))
		admin.POST("/categories", handlers.CreateCategory(db))
		admin.PUT("/categories/:id", handlers.UpdateCategory(db))
		admin.DELETE("/categories/:id", handlers.DeleteCategory(db))

		admin.GET("/posts", handlers.GetAllPosts(db))
		admin.POST("/posts", handlers.CreatePost(db))
		admin.PUT("/posts/:id", handlers.UpdatePost(db))
		admin.DELETE("/posts/:id", handlers.DeletePost(db))

		admin.GET("/orders", handlers.ListOrders(db))
		admin.PATCH("/orders/:orderNumber", handlers.UpdateOrder(db))
		admin.DELETE("/orders/:orderNumber", handlers.DeleteOrder(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
