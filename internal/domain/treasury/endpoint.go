package treasury

import (
	"strings"

	"github.com/google/uuid"
)

// EndpointKind names the kind of fund holder on either side of a transfer
type EndpointKind string

const (
	EndpointOwner     EndpointKind = "OWNER"
	EndpointRoute     EndpointKind = "ROUTE"
	EndpointCollector EndpointKind = "COLLECTOR"
)

// IsValid checks if the kind is known
func (k EndpointKind) IsValid() bool {
	switch k {
	case EndpointOwner, EndpointRoute, EndpointCollector:
		return true
	}
	return false
}

// String returns the string representation of EndpointKind
func (k EndpointKind) String() string {
	return string(k)
}

// Endpoint identifies one side of a transfer. The implementations below
// are the only variants; each carries just its own identifier.
type Endpoint interface {
	Kind() EndpointKind
	Ref() uuid.UUID
	endpoint()
}

// OwnerEndpoint is an owner's cash box in one currency
type OwnerEndpoint struct {
	CashBoxID uuid.UUID
}

// RouteEndpoint is the cash box of a route
type RouteEndpoint struct {
	RouteID uuid.UUID
}

// CollectorEndpoint is a field collector's projected balance
type CollectorEndpoint struct {
	UserID uuid.UUID
}

func (OwnerEndpoint) Kind() EndpointKind     { return EndpointOwner }
func (RouteEndpoint) Kind() EndpointKind     { return EndpointRoute }
func (CollectorEndpoint) Kind() EndpointKind { return EndpointCollector }

func (e OwnerEndpoint) Ref() uuid.UUID     { return e.CashBoxID }
func (e RouteEndpoint) Ref() uuid.UUID     { return e.RouteID }
func (e CollectorEndpoint) Ref() uuid.UUID { return e.UserID }

func (OwnerEndpoint) endpoint()     {}
func (RouteEndpoint) endpoint()     {}
func (CollectorEndpoint) endpoint() {}

// NewEndpoint builds the endpoint variant for kind
func NewEndpoint(kind string, id uuid.UUID) (Endpoint, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidEndpoint.WithMessage("Endpoint id is required")
	}
	switch EndpointKind(strings.ToUpper(kind)) {
	case EndpointOwner:
		return OwnerEndpoint{CashBoxID: id}, nil
	case EndpointRoute:
		return RouteEndpoint{RouteID: id}, nil
	case EndpointCollector:
		return CollectorEndpoint{UserID: id}, nil
	}
	return nil, ErrInvalidEndpoint
}
