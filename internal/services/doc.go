// Package services defines the [BoardReader] and [CardWriter] interfaces and implements them for the Trello web API.
//
// # Authentication
//
// Trello's web client authenticates with the browser session rather than an API key.
// [TrelloService] forwards the raw session cookie on every request and sends the dsc token
// (the value of the dsc cookie) in the JSON body of every write.
//
// # Endpoints
//
//   - GET /1/board/{id} : one wide read returning visible cards, every label and open lists
//   - PUT /1/cards/{id} : label replacement (idLabels) and archive (closed=true)
//   - POST /1/cards : copy a card with idCardSource and keepFromSource
//   - DELETE /1/cards/{id} : permanent delete
//
// [APIService] performs the same board read but returns the raw payload, for inspection.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : no dsc token configured
//   - [shared.ErrBoardNotFound] : board read returned 404
//   - [shared.ErrAPIRequest] : any other non-success status
//   - [shared.ErrServiceUnavailable] : 502 or 503, in addition to ErrAPIRequest
package services
