// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// AdmissionError closes a socket whose join was refused, e.g. because the
// game already started.
const AdmissionError websocket.StatusCode = 3004
