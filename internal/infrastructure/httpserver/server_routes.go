package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api")
	api.Use(s.middleware.RateLimit.Handler())

	// Read side polled by every launcher.
	api.GET("/patreon", s.getPatreon)
	api.GET("/last-updated", s.getLastUpdated)

	v1 := api.Group("/v1")
	v1.POST("/auth/login", s.login)

	protected := v1.Group("")
	protected.Use(s.middleware.JWT.RequireJWT())
	protected.POST("/auth/logout", s.logout)
	protected.POST("/posts", s.publishPost)
	protected.DELETE("/posts/:id", s.deletePost)
	protected.PUT("/patrons", s.replacePatrons)
}
