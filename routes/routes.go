package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"staybook-backend/controllers"
	"staybook-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires controllers onto the HTTP surface. authMW must resolve
// the caller's identity; ownerMW additionally requires the hotelOwner role.
func SetupRouter(
	bc *controllers.BookingController,
	rc *controllers.RoomController,
	hc *controllers.HotelController,
	wc *controllers.WebhookController,
	authMW gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		bookings := api.Group("/bookings")
		{
			bookings.POST("/check-availability", bc.CheckAvailability)
			bookings.POST("/book", authMW, bc.CreateBooking)
			bookings.POST("/user", authMW, bc.GetUserBookings)
			bookings.POST("/hotel", authMW, middleware.RequireOwner(), bc.GetHotelBookings)
			bookings.POST("/stripe-payment", authMW, bc.StripePayment)
			bookings.GET("/invoice/:bookingId", authMW, bc.DownloadInvoice)
		}

		hotels := api.Group("/hotels")
		{
			hotels.POST("", authMW, hc.RegisterHotel)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", rc.GetRooms)
			rooms.POST("", authMW, middleware.RequireOwner(), rc.CreateRoom)

			// fixed paths before /:id
			rooms.GET("/owner", authMW, middleware.RequireOwner(), rc.GetOwnerRooms)
			rooms.POST("/toggle-availability", authMW, middleware.RequireOwner(), rc.ToggleAvailability)
			rooms.GET("/:id", rc.GetRoomByID)
		}

		webhooks := api.Group("/webhooks")
		{
			// signature-verified raw body; no auth middleware
			webhooks.POST("/stripe", wc.HandleStripe)
		}
	}

	return r
}
