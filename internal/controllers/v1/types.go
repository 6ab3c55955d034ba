// Package v1 implements the v1 REST API of the Halfsies backend.
package v1

import (
	"github.com/halfsies/backend/internal/auth"
	"github.com/halfsies/backend/internal/notify"
	ez_uuid "github.com/halfsies/backend/internal/uuid"
)

// Controller carries the session manager and the notification hub for the
// API handlers.
type Controller struct {
	JWT *auth.JWTManager
	Hub *notify.Hub
}

type URIID struct {
	ID ez_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

type Pagination struct {
	Count  int   `json:"count"`  // The amount of records returned in this response
	Offset uint  `json:"offset"` // The offset for the first record returned
	Limit  int   `json:"limit"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total"`  // The total number of resources matching the query
}
