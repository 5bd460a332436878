package server

import (
	"podm-backend/internal/handler"
	"podm-backend/internal/middleware"
	"podm-backend/internal/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo                *echo.Echo
	jwtSecret           string
	billingHandler      *handler.BillingHandler
	subscriptionHandler *handler.SubscriptionHandler
	messageHandler      *handler.MessageHandler
	contentHandler      *handler.ContentHandler
}

func NewServer(
	jwtSecret string,
	billingService service.BillingService,
	subscriptionService service.SubscriptionService,
	messageService service.MessageService,
	contentService service.ContentService,
) *Server {
	e := echo.New()

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:                e,
		jwtSecret:           jwtSecret,
		billingHandler:      handler.NewBillingHandler(billingService),
		subscriptionHandler: handler.NewSubscriptionHandler(subscriptionService),
		messageHandler:      handler.NewMessageHandler(messageService),
		contentHandler:      handler.NewContentHandler(contentService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// webhook is signature-verified, not token-authenticated
	api.POST("/billing/webhook", s.billingHandler.StripeWebhook)

	authed := api.Group("", middleware.AuthMiddleware(s.jwtSecret))

	// -------- billing --------
	authed.POST("/billing/tips", s.billingHandler.Tip)
	authed.POST("/billing/unlock-post", s.billingHandler.UnlockPost)
	authed.POST("/billing/unlock-message", s.billingHandler.UnlockMessage)

	// -------- subscriptions --------
	authed.POST("/subscriptions", s.subscriptionHandler.Subscribe)
	authed.DELETE("/subscriptions/:id", s.subscriptionHandler.Cancel)
	authed.POST("/subscriptions/:id/resubscribe", s.subscriptionHandler.Resubscribe)
	authed.GET("/subscriptions/status/:creatorID", s.subscriptionHandler.Status)
	authed.GET("/creators/:creatorID/tiers", s.subscriptionHandler.ListTiers)

	// -------- messages --------
	authed.POST("/messages", s.messageHandler.Send)
	authed.POST("/messages/broadcast", s.messageHandler.Broadcast)

	// -------- content --------
	authed.POST("/content", s.contentHandler.CreatePost)
	authed.POST("/content/:id/media", s.contentHandler.AppendMedia)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
