/*
Package monitoring provides Prometheus metrics for the popup host and proxies.

# Overview

Collectors are registered on a caller-supplied prometheus.Registerer so that
tests and embedded hosts can use private registries. A nil *Metrics is a valid
receiver for every Record/Set method, which lets components run unmetered.

# Metrics

- popup_http_requests_total, popup_http_request_duration_seconds
- popup_forwarded_calls_total{action,status}, popup_forward_duration_seconds{action}
- popup_offset_refreshes_total{outcome}
- popup_host_dispatches_total{action,status}, popup_host_popups
- popup_ws_connections, popup_ws_messages_total{direction,kind}
- popup_uptime_seconds

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	timer := monitoring.NewTimer(metrics, "PopupFactory.hide")
	// ... forward the call ...
	timer.Stop(monitoring.StatusOK)
*/
package monitoring
