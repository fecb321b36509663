package routers

import (
	"database/sql"
	"log"
	"os"
	"time"

	"catalogapi/controllers"
	"catalogapi/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
)

func Route() *gin.Engine {
	router := gin.Default()
	router.Use(CORS())
	api := controllers.NewAPI()

	api.Db = newDB(nil)
	api.Db.SetConnMaxLifetime(5 * time.Minute)
	redisHost := os.Getenv("REDIS_HOST")
	redisPort := os.Getenv("REDIS_PORT")

	api.Redis = redis.NewClient(&redis.Options{
		Addr: redisHost + ":" + redisPort,
		DB:   0,
	})

	router.POST("/api/login", api.Authenticate)
	router.GET("/api/check-session", middlewares.Auth(api.Redis), api.CheckSession)
	router.GET("/api/refresh-session", middlewares.Auth(api.Redis), api.RefreshSession)
	router.GET("/api/logout", middlewares.Auth(api.Redis), api.Logout)

	products := router.Group("/api/products")
	{
		products.GET("", api.GetProducts)
		products.GET("/:id", api.GetProduct)
		products.POST("/search_image", api.SearchImage)
		products.POST("/search_image/upload", api.SearchImageUpload)
	}

	adminProducts := router.Group("/api/products")
	adminProducts.Use(middlewares.Auth(api.Redis), middlewares.Admin())
	{
		adminProducts.POST("", api.CreateProduct)
		adminProducts.PUT("", api.UpdateProduct)
		adminProducts.DELETE("/:id", api.DeleteProduct)
	}

	categories := router.Group("/api/categories")
	{
		categories.GET("", api.GetCategories)
	}

	adminCategories := router.Group("/api/categories")
	adminCategories.Use(middlewares.Auth(api.Redis), middlewares.Admin())
	{
		adminCategories.POST("", api.CreateCategory)
		adminCategories.DELETE("/:id", api.DeleteCategory)
	}

	router.GET("/api/sizes", api.GetSizes)

	return router
}

// CORS Cross Origin Resource Sharing
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, "+
			"Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func newDB(indb *sql.DB) *sql.DB {
	if indb != nil {
		return indb
	}
	connString := os.Getenv("DB_CONNECTION_STRING")
	if connString == "" {
		log.Fatal("Please provide DB_CONNECTION_STRING environment variable")
	}

	conn, err := sql.Open("postgres", connString)
	if err != nil {
		log.Fatalf("Cannot connect to db with connection %s: %v", connString, err)
	}

	if err = conn.Ping(); err != nil {
		log.Fatal(err)
	}

	return conn
}
