// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the REST client for the shift report service.
//
// # Key Types
//
//   - Client: authenticated JSON client with rate limiting and retries
//   - APIError: non-2xx response carrying the server's message
//
// # Errors
//
// A 401 maps to ErrUnauthorized and a failed connection maps to ErrNetwork.
// Every other non-2xx status is an *APIError. Only GET requests are retried.
//
// # Usage
//
//	client := api.New(cfg.API.BaseURL, api.WithRateLimit(10))
//	res, err := client.Login(ctx, "marta", "secret")
//	client.SetToken(res.Token)
//	reports, err := client.MyReports(ctx)
package api
