/*
Package httpserver implements the HTTP surface of the Quillpress
provisioning service.

It exposes a single business endpoint that drives the one-time
installation workflow, plus the usual health and diagnostic endpoints:

  - POST /api/install - run the installation workflow
  - GET /livez - liveness check
  - GET /readyz - readiness check
  - GET /drain - gracefully mark server as not ready
  - GET /undrain - mark server as ready

The install endpoint accepts a form-encoded request describing the
owner account and the database connection, runs the workflow to a
terminal state, and answers with a JSON document:

	{"success": true, "redirect": "/admin/"}
	{"success": false, "invalid": ["password"], "message": "..."}

On success the owner's session token is also set as a cookie so the
redirect lands in an authenticated admin panel. Once an installation
has completed, the endpoint answers 403 for every further request.

# Example Usage

	cfg := &httpserver.HTTPServerConfig{
		ListenAddr:  ":8080",
		MetricsAddr: ":9090",
		Log:         logger,

		DrainDuration:            30 * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              5 * time.Second,
		WriteTimeout:             10 * time.Second,
	}

	handler := httpserver.NewHandler(root, installer, logger)
	server, err := httpserver.New(cfg, handler)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	server.RunInBackground()
	defer server.Shutdown()
*/
package httpserver
