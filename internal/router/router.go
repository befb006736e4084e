package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/kasistays/kasistays/internal/handler"    // import the handlers that implement business logic
    "github.com/kasistays/kasistays/internal/middleware" // session decoding and role enforcement
    "github.com/kasistays/kasistays/internal/model"      // role constants gating route groups
)

// Handlers bundles every handler the router wires up. main constructs one
// of these after building the repositories.
type Handlers struct {
    Auth        *handler.AuthHandler
    Listing     *handler.ListingHandler
    Booking     *handler.BookingHandler
    Convo       *handler.ConversationHandler
    Maintenance *handler.MaintenanceHandler
    Provider    *handler.ProviderHandler
    Admin       *handler.AdminHandler
}

// RegisterRoutes registers routes that do not require a session on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Map the GET request at path "/healthz" to the Health handler so load
    // balancers and monitoring systems can verify the service is up.
    e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the full /api surface. SessionAuth must already be
// installed on the Echo instance so the role middleware below can see the
// decoded claims; cacheGET wraps the public catalog reads and may be nil
// when Redis is unavailable.
func RegisterAPI(e *echo.Echo, h Handlers, cacheGET echo.MiddlewareFunc) {
    api := e.Group("/api")

    // Account lifecycle. Signup and signin set the session cookie; /me is
    // soft-authenticated and reports the guest state with a 401 rather
    // than being blocked outright, so it is registered outside the
    // RequireAuth group.
    auth := api.Group("/auth")
    auth.POST("/signup", h.Auth.SignUp)
    auth.POST("/landlord-signup", h.Auth.LandlordSignUp)
    auth.POST("/signin", h.Auth.SignIn)
    auth.POST("/signout", h.Auth.SignOut)
    auth.GET("/me", h.Auth.Me)

    // Public catalog reads. These are the hot paths, so they carry the
    // Redis response cache when it is configured.
    publicGET := []echo.MiddlewareFunc{}
    if cacheGET != nil {
        publicGET = append(publicGET, cacheGET)
    }
    api.GET("/listings", h.Listing.GetListings, publicGET...)
    api.GET("/listings/recent", h.Listing.GetRecentListings, publicGET...)
    api.GET("/providers", h.Provider.GetProviders, publicGET...)

    // Everything below requires a signed-in user of some role.
    authed := api.Group("", middleware.RequireAuth())

    // Listings are created by landlords only.
    authed.POST("/listings", h.Listing.CreateListing, middleware.RequireRole(model.RoleLandlord))

    // Booking workflow: students request, landlords decide, both list
    // their own side.
    authed.POST("/listings/:id/book", h.Booking.BookListing, middleware.RequireRole(model.RoleStudent))
    authed.PUT("/bookings/:id/status", h.Booking.DecideBooking, middleware.RequireRole(model.RoleLandlord))
    authed.GET("/bookings", h.Booking.ListBookings)

    // Conversations are open to any signed-in role; membership checks
    // happen per conversation in the handlers.
    authed.POST("/conversations", h.Convo.StartConversation)
    authed.GET("/conversations", h.Convo.GetConversations)
    authed.GET("/conversations/:id/messages", h.Convo.GetMessages)
    authed.POST("/conversations/:id/messages", h.Convo.SendMessage)

    // Maintenance tracker.
    authed.GET("/maintenance-requests", h.Maintenance.ListRequests)
    authed.POST("/maintenance-requests", h.Maintenance.CreateRequest, middleware.RequireRole(model.RoleStudent))
    authed.PUT("/maintenance-requests/:id", h.Maintenance.UpdateRequest, middleware.RequireRole(model.RoleLandlord))

    // Oversight dashboard, admin role only.
    admin := api.Group("/admin", middleware.RequireRole(model.RoleAdmin))
    admin.GET("/users", h.Admin.GetUsers)
    admin.PUT("/users/:id/verify", h.Admin.VerifyUser)
    admin.GET("/listings", h.Admin.GetAllListings)
    admin.PUT("/listings/:id/status", h.Admin.SetListingActive)
}
