// Package server exposes the engine to a presentation layer over HTTP.
//
// Endpoints:
//
//	GET    /health
//	GET    /assets
//	GET    /assets/{id}                     asset, live flag and odds
//	GET    /flags
//	POST   /sessions
//	DELETE /sessions/{id}
//	GET    /sessions/{id}/picks
//	POST   /sessions/{id}/picks             toggle {"asset_id": 1, "predicate": "Over 4x"}
//	DELETE /sessions/{id}/picks/{assetID}
//	GET    /sessions/{id}/payout?stake=25
//	PUT    /sessions/{id}/stake             {"stake": "25.50"}
//	GET    /stream                          websocket tick snapshots
//
// Stakes are parsed as decimals and rejected with 400 unless positive.
// Unknown assets and sessions return 404.
package server
