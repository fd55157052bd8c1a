package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/", s.index)
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)
	s.echo.GET("/balancing_get", s.balancing)
	s.echo.POST("/balancing_post", s.balancing)

	s.echo.POST("/kv", s.writeKey)
	s.echo.GET("/kv", s.readKey)

	services := s.echo.Group("/services")
	services.POST("", s.registerService)
	services.GET("", s.lookupService)
	services.POST("/delete", s.acknowledgeServiceChange)
	services.POST("/availability", s.acknowledgeServiceChange)
	services.POST("/update", s.acknowledgeServiceChange)

	s.echo.POST("/devices", s.registerDevice)
	s.echo.POST("/notifications/broadcast", s.broadcastNext)

	// Routes kept for clients built against the first version of the API.
	s.echo.POST("/testput", s.writeKey)
	s.echo.GET("/testget", s.readKey)
	s.echo.POST("/postService", s.registerService)
	s.echo.GET("/getService", s.lookupService)
	s.echo.POST("/deleteService", s.acknowledgeServiceChange)
	s.echo.POST("/changeServiceAvailability", s.acknowledgeServiceChange)
	s.echo.POST("/updateService", s.acknowledgeServiceChange)
	s.echo.POST("/registerAndroidDeviceForGCMPush", s.registerDevice)
	s.echo.GET("/sendTestPush", s.broadcastNext)
	s.echo.POST("/sendTestPush", s.broadcastNext)
}
